package exporter

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/starford/draftdeck/internal/models"
)

func readParts(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip: %v", err)
	}
	out := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		b, _ := io.ReadAll(rc)
		rc.Close()
		out[f.Name] = string(b)
	}
	return out
}

// wellFormed fails the test if any XML part does not parse.
func wellFormed(t *testing.T, parts map[string]string) {
	t.Helper()
	for name, body := range parts {
		dec := xml.NewDecoder(strings.NewReader(body))
		for {
			_, err := dec.Token()
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Fatalf("%s: %v", name, err)
			}
		}
	}
}

func TestExportDocx(t *testing.T) {
	p := &models.Project{
		ID: 7, Title: "Report & Plan", DocType: models.DocTypeDocx, Prompt: "solar <energy>",
		Sections: []models.Section{
			{Title: "Intro", Content: "First para.\n\n- point one"},
			{Title: "Outlook", Content: "### Risks\nNone"},
		},
	}
	f, err := Export(p)
	if err != nil {
		t.Fatal(err)
	}
	if f.Name != "project_7.docx" || f.ContentType != ContentTypeDocx || f.Ext() != "docx" {
		t.Errorf("file = %s %s", f.Name, f.ContentType)
	}

	parts := readParts(t, f.Data)
	wellFormed(t, parts)
	doc, ok := parts["word/document.xml"]
	if !ok {
		t.Fatal("document.xml missing")
	}
	for _, want := range []string{
		`<w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t xml:space="preserve">Report &amp; Plan`,
		`Prompt: solar &lt;energy&gt;`,
		`<w:pStyle w:val="Heading2"/></w:pPr><w:r><w:t xml:space="preserve">Intro`,
		`• point one`,
		`<w:pStyle w:val="Heading3"/></w:pPr><w:r><w:t xml:space="preserve">Risks`,
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q", want)
		}
	}
	if strings.Index(doc, "Intro") > strings.Index(doc, "Outlook") {
		t.Error("sections out of order")
	}
}

func TestExportDocxWithoutPrompt(t *testing.T) {
	f, err := Export(&models.Project{ID: 1, Title: "T", DocType: models.DocTypeDocx})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(readParts(t, f.Data)["word/document.xml"], "Prompt:") {
		t.Error("empty prompt should not be rendered")
	}
}

func TestExportPptx(t *testing.T) {
	p := &models.Project{
		ID: 3, Title: "Deck", DocType: models.DocTypePptx,
		Sections: []models.Section{
			{Title: "One", Content: "- a\n- b"},
			{Title: "Two"},
		},
	}
	f, err := Export(p)
	if err != nil {
		t.Fatal(err)
	}
	if f.Name != "project_3.pptx" || f.ContentType != ContentTypePptx {
		t.Errorf("file = %s %s", f.Name, f.ContentType)
	}

	parts := readParts(t, f.Data)
	wellFormed(t, parts)
	for _, name := range []string{"ppt/presentation.xml", "ppt/slides/slide1.xml", "ppt/slides/slide2.xml", "ppt/theme/theme1.xml"} {
		if _, ok := parts[name]; !ok {
			t.Errorf("%s missing", name)
		}
	}
	if _, ok := parts["ppt/slides/slide3.xml"]; ok {
		t.Error("unexpected third slide")
	}
	if !strings.Contains(parts["ppt/slides/slide1.xml"], "<a:t>One</a:t>") {
		t.Error("slide 1 title missing")
	}
	if strings.Count(parts["ppt/slides/slide1.xml"], "<a:buChar") != 2 {
		t.Error("slide 1 bullets missing")
	}
	if !strings.Contains(parts["ppt/presentation.xml"], `r:id="rId4"`) {
		t.Error("second slide not referenced")
	}
	if !strings.Contains(parts["[Content_Types].xml"], "/ppt/slides/slide2.xml") {
		t.Error("content types missing slide 2")
	}
}

func TestUnknownDocTypeRendersSlides(t *testing.T) {
	f, err := Export(&models.Project{ID: 9, DocType: "pdf"})
	if err != nil {
		t.Fatal(err)
	}
	if f.ContentType != ContentTypePptx {
		t.Errorf("content type = %s", f.ContentType)
	}
}
