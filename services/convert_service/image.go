package convert_service

import (
	"encoding/base64"
	"fmt"
)

// RenderImageHTML wraps an image as a data URI in a full-bleed page that
// centers it and scales it to fit without distortion.
func RenderImageHTML(mimeType string, data []byte) string {
	dataURI := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
	return `
      <style>
        body, html {
          margin: 0;
          padding: 0;
          width: 100%;
          height: 100%;
          display: flex;
          align-items: center;
          justify-content: center;
        }
        img {
          max-width: 100%;
          max-height: 100%;
        }
      </style>
      <img src="` + dataURI + `" />`
}
