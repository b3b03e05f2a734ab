package handlers

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/kozaktomas/photo-declutter/internal/ai"
	"github.com/kozaktomas/photo-declutter/internal/catalog"
	"github.com/kozaktomas/photo-declutter/internal/originals"
	"github.com/kozaktomas/photo-declutter/internal/store"
)

// captionTimeout bounds each caption request during export.
const captionTimeout = 30 * time.Second

// ExportHandler packs the selected photos into a zip archive with a JSON
// manifest. Keeper photos get an AI caption when a captioner is configured.
type ExportHandler struct {
	store     *store.Store
	originals *originals.Store
	captioner ai.Captioner // may be nil
}

// NewExportHandler creates a new export handler.
func NewExportHandler(st *store.Store, orig *originals.Store, captioner ai.Captioner) *ExportHandler {
	return &ExportHandler{store: st, originals: orig, captioner: captioner}
}

// manifestEntry describes one exported photo.
type manifestEntry struct {
	File         string `json:"file"`
	PhotoID      string `json:"photo_id"`
	OriginalName string `json:"original_name"`
	Quality      int    `json:"quality"`
	GroupID      string `json:"group_id,omitempty"`
	Caption      string `json:"caption,omitempty"`
}

// removeDiacritics removes diacritical marks from a string (e.g., "Jiří" -> "Jiri").
func removeDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// exportFilename builds a safe archive filename from the original name,
// prefixed with a running number to keep entries unique and ordered.
func exportFilename(index int, originalName, ext string) string {
	base := originalName
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	base = removeDiacritics(base)
	base = strings.ToLower(base)

	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == ' ':
			b.WriteRune('-')
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "photo"
	}
	return fmt.Sprintf("%03d-%s%s", index, slug, ext)
}

// Export streams a zip with the selected photos in ingestion order plus a
// manifest.json describing them.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	state := h.store.State()

	var selected []catalog.Photo
	for _, p := range state.Photos {
		if state.IsSelected(p.ID) {
			selected = append(selected, p)
		}
	}
	if len(selected) == 0 {
		respondError(w, http.StatusConflict, "no photos selected")
		return
	}

	groupByPhoto := make(map[string]string)
	keeper := make(map[string]bool)
	for _, g := range state.Groups {
		for _, p := range g.Photos {
			groupByPhoto[p.ID] = g.ID
		}
		if k := g.Keeper(); k != nil {
			keeper[k.ID] = true
		}
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="photo-declutter-export.zip"`)

	zw := zip.NewWriter(w)
	defer zw.Close()

	manifest := make([]manifestEntry, 0, len(selected))
	for i, p := range selected {
		data, err := h.originals.Read(p.ID)
		if err != nil {
			log.Printf("export: skipping photo %s: %v", sanitizeForLog(p.ID), err)
			continue
		}

		name := exportFilename(i+1, p.OriginalName, h.originals.Ext(p.ID))
		entry := manifestEntry{
			File:         name,
			PhotoID:      p.ID,
			OriginalName: p.OriginalName,
			Quality:      p.Quality,
			GroupID:      groupByPhoto[p.ID],
		}
		if h.captioner != nil && keeper[p.ID] {
			entry.Caption = h.caption(r.Context(), p.ID, data)
		}

		fw, err := zw.Create(name)
		if err != nil {
			log.Printf("export: failed to create zip entry %s: %v", name, err)
			return
		}
		if _, err := fw.Write(data); err != nil {
			log.Printf("export: failed to write zip entry %s: %v", name, err)
			return
		}
		manifest = append(manifest, entry)
	}

	mw, err := zw.Create("manifest.json")
	if err != nil {
		log.Printf("export: failed to create manifest: %v", err)
		return
	}
	enc := json.NewEncoder(mw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(manifest); err != nil {
		log.Printf("export: failed to write manifest: %v", err)
	}
}

// caption asks the configured captioner for a one-liner, best effort.
func (h *ExportHandler) caption(ctx context.Context, photoID string, data []byte) string {
	ctx, cancel := context.WithTimeout(ctx, captionTimeout)
	defer cancel()

	caption, err := h.captioner.Caption(ctx, data)
	if err != nil {
		log.Printf("export: caption failed for photo %s: %v", sanitizeForLog(photoID), err)
		return ""
	}
	return caption
}
