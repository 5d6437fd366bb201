package server

import (
	"crypto/tls"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/serisow/docvault/handlers"
	"github.com/serisow/docvault/services/analysis_service"
	"github.com/serisow/docvault/services/convert_service"
	"github.com/serisow/docvault/services/storage_service"
	"github.com/urfave/negroni"
	"golang.org/x/crypto/acme/autocert"
)

// SetupRoutes wires every endpoint: direct conversions, the per-user
// document lifecycle, and the streaming analysis route.
func SetupRoutes(converter *convert_service.Converter, store *storage_service.Service, analysis *analysis_service.Service, maxUploadBytes int64, logger *slog.Logger) *mux.Router {
	r := mux.NewRouter()

	convertHandler := handlers.NewConvertHandler(converter, maxUploadBytes, logger)
	r.HandleFunc("/convert/pdf", convertHandler.ConvertToPDF).Methods("POST")
	r.HandleFunc("/convert/text", convertHandler.ConvertToText).Methods("POST")

	if store != nil {
		documentsHandler := handlers.NewDocumentsHandler(converter, store, maxUploadBytes, logger)
		r.HandleFunc("/documents", documentsHandler.Upload).Methods("POST")
		r.HandleFunc("/documents", documentsHandler.List).Methods("GET")
		r.HandleFunc("/documents/{id}", documentsHandler.Delete).Methods("DELETE")
		r.HandleFunc("/documents/{id}", documentsHandler.UpdateMetadata).Methods("PATCH")
	}

	if analysis != nil {
		analyzeHandler := handlers.NewAnalyzeHandler(analysis, logger)
		r.Handle("/analyze", analyzeHandler).Methods("POST")
	}

	return r
}

// ServeProduction runs the server behind autocert-managed TLS.
func ServeProduction(n *negroni.Negroni, domains []string, certCacheDir string) {
	autocertManager := autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(domains...),
		Cache:      autocert.DirCache(certCacheDir),
	}

	// Port 80 serves ACME challenges and redirects everything else.
	go func() {
		srv := &http.Server{
			Addr:         ":80",
			Handler:      autocertManager.HTTPHandler(nil),
			IdleTimeout:  time.Minute,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		}

		err := srv.ListenAndServe()
		log.Fatal(err)
	}()

	tlsConfig := &tls.Config{
		GetCertificate:   autocertManager.GetCertificate,
		CurvePreferences: []tls.CurveID{tls.X25519, tls.CurveP256},
	}

	srv := &http.Server{
		Addr:         ":443",
		Handler:      n,
		TLSConfig:    tlsConfig,
		IdleTimeout:  time.Minute,
		ReadTimeout:  time.Minute,
		WriteTimeout: 10 * time.Minute,
	}

	err := srv.ListenAndServeTLS("", "") // Key and cert provided automatically by autocert.
	log.Fatal(err)
}

// ServeDevelopment starts the plain HTTP server used outside production.
func ServeDevelopment(s *http.Server) {
	log.Fatal(s.ListenAndServe())
}
