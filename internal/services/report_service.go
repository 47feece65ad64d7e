package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"aquagem-backend/internal/models"
	"aquagem-backend/internal/storage"
	"aquagem-backend/internal/timeutil"
)

// ReportService renders printable manifests and archives them.
type ReportService struct {
	Store storage.Store // nil when object storage is not configured
}

func NewReportService(store storage.Store) *ReportService {
	return &ReportService{Store: store}
}

// GenerateManifestPDF renders the planned manifest, one section per route
func (s *ReportService) GenerateManifestPDF(m *models.ManifestResponse) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "AquaGem - Delivery Manifest", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("%s (%s) - %d deliveries", m.Date, m.Day, m.Total), "", 1, "C", false, 0, "")
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", timeutil.FormatIST(m.GeneratedAt, timeutil.DisplayLayout)), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Entries keep their order inside each route
	var order []string
	byRoute := make(map[string][]models.ManifestEntry)
	for _, e := range m.Entries {
		if _, ok := byRoute[e.RouteName]; !ok {
			order = append(order, e.RouteName)
		}
		byRoute[e.RouteName] = append(byRoute[e.RouteName], e)
	}

	for _, route := range order {
		entries := byRoute[route]

		pdf.SetFillColor(240, 240, 240)
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(190, 8, fmt.Sprintf("%s (%d)", route, len(entries)), "1", 1, "L", true, 0, "")

		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(200, 200, 200)
		pdf.CellFormat(10, 7, "#", "1", 0, "C", true, 0, "")
		pdf.CellFormat(45, 7, "Customer", "1", 0, "C", true, 0, "")
		pdf.CellFormat(28, 7, "Mobile", "1", 0, "C", true, 0, "")
		pdf.CellFormat(72, 7, "Address", "1", 0, "C", true, 0, "")
		pdf.CellFormat(15, 7, "Jars", "1", 0, "C", true, 0, "")
		pdf.CellFormat(20, 7, "Done", "1", 1, "C", true, 0, "")

		pdf.SetFont("Arial", "", 9)
		for i, e := range entries {
			pdf.CellFormat(10, 6, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
			pdf.CellFormat(45, 6, truncate(e.Customer.Name, 26), "1", 0, "L", false, 0, "")
			pdf.CellFormat(28, 6, e.Customer.Mobile, "1", 0, "C", false, 0, "")
			pdf.CellFormat(72, 6, truncate(formatAddress(e.Customer.Address), 44), "1", 0, "L", false, 0, "")
			pdf.CellFormat(15, 6, fmt.Sprintf("%d", e.Customer.JarBalance), "1", 0, "C", false, 0, "")
			pdf.CellFormat(20, 6, "", "1", 1, "C", false, 0, "")
			if e.Customer.DeliveryInstructions != "" {
				pdf.SetFont("Arial", "I", 8)
				pdf.CellFormat(190, 5, "  Note: "+truncate(e.Customer.DeliveryInstructions, 110), "LRB", 1, "L", false, 0, "")
				pdf.SetFont("Arial", "", 9)
			}
		}
		pdf.Ln(4)
	}

	if len(m.Entries) == 0 {
		pdf.SetFont("Arial", "I", 11)
		pdf.CellFormat(190, 10, "No deliveries scheduled.", "", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ArchiveManifest uploads a rendered manifest and returns its URL
func (s *ReportService) ArchiveManifest(ctx context.Context, date string, data []byte) (string, error) {
	if s.Store == nil {
		return "", ErrStorageDisabled
	}
	url, err := s.Store.Put(ctx, storage.ManifestKey(date), "application/pdf", data)
	if err != nil {
		return "", fmt.Errorf("archive manifest: %w", err)
	}
	log.Printf("[Report] manifest for %s archived (%d bytes)", date, len(data))
	return url, nil
}

func formatAddress(a models.Address) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{a.Flat, a.Building, a.Society, a.Area} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "."
}
