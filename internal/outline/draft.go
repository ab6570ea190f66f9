// Package outline keeps the editable list of suggested titles between
// suggest_outline and apply_outline.
package outline

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrEmpty is returned by Apply when no non-blank title remains.
var ErrEmpty = errors.New("No titles to apply")

// Row is one editable title. Index always equals the row's position.
type Row struct {
	Index int
	Title string
}

// Applier sends titles to a project.
type Applier interface {
	ApplyOutline(ctx context.Context, projectID int64, titles []string) error
}

// ApplierFunc adapts a function to Applier.
type ApplierFunc func(ctx context.Context, projectID int64, titles []string) error

// ApplyOutline implements Applier.
func (f ApplierFunc) ApplyOutline(ctx context.Context, projectID int64, titles []string) error {
	return f(ctx, projectID, titles)
}

// Draft is the suggestion list for one project.
type Draft struct {
	ProjectID int64
	titles    []string
}

// NewDraft starts a draft for projectID from suggested titles.
func NewDraft(projectID int64, suggestions []string) *Draft {
	return &Draft{ProjectID: projectID, titles: append([]string(nil), suggestions...)}
}

// Len returns the number of rows.
func (d *Draft) Len() int { return len(d.titles) }

// Rows returns the rows numbered 0..n-1.
func (d *Draft) Rows() []Row {
	rows := make([]Row, len(d.titles))
	for i, t := range d.titles {
		rows[i] = Row{Index: i, Title: t}
	}
	return rows
}

// Add appends a title. Blank titles are ignored; it reports whether a row
// was added.
func (d *Draft) Add(title string) bool {
	title = strings.TrimSpace(title)
	if title == "" {
		return false
	}
	d.titles = append(d.titles, title)
	return true
}

// Remove deletes row i; later rows shift down by one.
func (d *Draft) Remove(i int) error {
	if i < 0 || i >= len(d.titles) {
		return fmt.Errorf("outline: no row %d", i)
	}
	d.titles = append(d.titles[:i], d.titles[i+1:]...)
	return nil
}

// Set replaces the text of row i.
func (d *Draft) Set(i int, title string) error {
	if i < 0 || i >= len(d.titles) {
		return fmt.Errorf("outline: no row %d", i)
	}
	d.titles[i] = title
	return nil
}

// Titles returns the trimmed non-blank titles in order.
func (d *Draft) Titles() []string {
	out := make([]string, 0, len(d.titles))
	for _, t := range d.titles {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Apply sends Titles to the project. An empty list is refused with ErrEmpty
// and nothing is sent.
func (d *Draft) Apply(ctx context.Context, a Applier) error {
	titles := d.Titles()
	if len(titles) == 0 {
		return ErrEmpty
	}
	return a.ApplyOutline(ctx, d.ProjectID, titles)
}
