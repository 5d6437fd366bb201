package convert_service

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// StampMetadata sets the document information Title, and Author when one is
// supplied, then re-serializes the PDF. Pure in-memory transform.
func StampMetadata(pdfBytes []byte, title, author string) ([]byte, error) {
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(pdfBytes), conf)
	if err != nil {
		return nil, fmt.Errorf("%w: reading rendered PDF: %v", ErrRender, err)
	}

	if err := setInfoEntries(ctx, title, author); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := api.WriteContext(ctx, &buf); err != nil {
		return nil, fmt.Errorf("%w: writing stamped PDF: %v", ErrRender, err)
	}
	return buf.Bytes(), nil
}

func setInfoEntries(ctx *model.Context, title, author string) error {
	entries := types.Dict{"Title": types.StringLiteral(title)}
	if author != "" {
		entries["Author"] = types.StringLiteral(author)
	}

	if ctx.Info == nil {
		ir, err := ctx.IndRefForNewObject(entries)
		if err != nil {
			return fmt.Errorf("%w: creating info dict: %v", ErrRender, err)
		}
		ctx.Info = ir
		return nil
	}

	d, err := ctx.DereferenceDict(*ctx.Info)
	if err != nil || d == nil {
		return fmt.Errorf("%w: resolving info dict: %v", ErrRender, err)
	}
	for k, v := range entries {
		d[k] = v
	}
	return nil
}
