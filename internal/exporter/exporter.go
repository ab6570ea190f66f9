// Package exporter renders projects as Office Open XML packages: Word
// documents for docx projects and PowerPoint decks for everything else.
package exporter

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/starford/draftdeck/internal/models"
)

// Media types of the rendered packages.
const (
	ContentTypeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ContentTypePptx = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
)

// File is a rendered export.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Ext returns the file extension without the dot.
func (f *File) Ext() string {
	if i := strings.LastIndexByte(f.Name, '.'); i >= 0 {
		return f.Name[i+1:]
	}
	return ""
}

// Export renders p with its sections in order.
func Export(p *models.Project) (*File, error) {
	if p.DocType == models.DocTypeDocx {
		data, err := renderDocx(p)
		if err != nil {
			return nil, err
		}
		return &File{Name: fmt.Sprintf("project_%d.docx", p.ID), ContentType: ContentTypeDocx, Data: data}, nil
	}
	data, err := renderPptx(p)
	if err != nil {
		return nil, err
	}
	return &File{Name: fmt.Sprintf("project_%d.pptx", p.ID), ContentType: ContentTypePptx, Data: data}, nil
}

// part is one file inside an OOXML package.
type part struct {
	name string
	body string
}

func pack(parts []part) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			return nil, fmt.Errorf("exporter: create %s: %w", p.name, err)
		}
		if _, err := w.Write([]byte(p.body)); err != nil {
			return nil, fmt.Errorf("exporter: write %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("exporter: close package: %w", err)
	}
	return buf.Bytes(), nil
}

// esc escapes text for XML character data and attribute values.
func esc(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

func coreProps(title string) string {
	return xmlHeader + `<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
		`<dc:title>` + esc(title) + `</dc:title><dc:creator>draftdeck</dc:creator></cp:coreProperties>`
}
