package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/starford/draftdeck/internal/client"
	"github.com/starford/draftdeck/internal/documents"
	"github.com/starford/draftdeck/internal/outline"
)

func (a *App) projects(ctx context.Context, cmd *cli.Command) error {
	c, err := a.authed(cmd)
	if err != nil {
		return err
	}
	projects, err := c.ListProjects(ctx)
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		fmt.Fprintln(a.out, "No projects")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tSECTIONS\tTITLE")
	for _, p := range projects {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", p.ID, p.DocType, len(p.Sections), p.Title)
	}
	return tw.Flush()
}

func (a *App) create(ctx context.Context, cmd *cli.Command) error {
	c, err := a.authed(cmd)
	if err != nil {
		return err
	}
	args := cmd.Args().Slice()
	if len(args) == 0 {
		return errors.New("missing title")
	}
	in := documents.NewProject{
		Title:   args[0],
		DocType: cmd.String("type"),
		Prompt:  cmd.String("prompt"),
	}
	for i, t := range args[1:] {
		in.Sections = append(in.Sections, documents.NewSection{Title: t, Position: i, IsSlide: in.DocType == "pptx"})
	}
	p, err := c.CreateProject(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created project %d (%s) with %d sections\n", p.ID, p.DocType, len(p.Sections))
	return nil
}

func (a *App) open(ctx context.Context, cmd *cli.Command) error {
	id, err := argID(cmd, 0, "project id")
	if err != nil {
		return err
	}
	c, err := a.authed(cmd)
	if err != nil {
		return err
	}
	p, err := c.GetProject(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "# %s [%s]\n", p.Title, p.DocType)
	if p.Prompt != "" {
		fmt.Fprintf(a.out, "Prompt: %s\n", p.Prompt)
	}
	for _, s := range p.Sections {
		fmt.Fprintf(a.out, "\n## [%d] %s\n", s.ID, s.Title)
		if s.Content != "" {
			fmt.Fprintln(a.out, s.Content)
		}
	}
	return nil
}

func (a *App) deleteProject(ctx context.Context, cmd *cli.Command) error {
	id, err := argID(cmd, 0, "project id")
	if err != nil {
		return err
	}
	c, err := a.authed(cmd)
	if err != nil {
		return err
	}
	if err := c.DeleteProject(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted project %d\n", id)
	return nil
}

func (a *App) generate(ctx context.Context, cmd *cli.Command) error {
	id, err := argID(cmd, 0, "project id")
	if err != nil {
		return err
	}
	c, err := a.authed(cmd)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Generating...")
	if err := c.Generate(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Generation complete")
	return nil
}

func applier(c *client.Client) outline.Applier {
	return outline.ApplierFunc(func(ctx context.Context, id int64, titles []string) error {
		_, err := c.ApplyOutline(ctx, id, titles)
		return err
	})
}

func (a *App) printRows(d *outline.Draft) {
	for _, r := range d.Rows() {
		fmt.Fprintf(a.out, "  %d. %s\n", r.Index, r.Title)
	}
}

func (a *App) suggest(ctx context.Context, cmd *cli.Command) error {
	id, err := argID(cmd, 0, "project id")
	if err != nil {
		return err
	}
	count := documents.DefaultOutlineCount
	if raw := cmd.Args().Get(1); raw != "" {
		if count, err = strconv.Atoi(raw); err != nil {
			return fmt.Errorf("invalid count %q", raw)
		}
	}
	c, err := a.authed(cmd)
	if err != nil {
		return err
	}
	suggestions, err := c.SuggestOutline(ctx, id, count)
	if err != nil {
		return err
	}

	d := outline.NewDraft(id, suggestions)
	for {
		fmt.Fprintln(a.out, "Suggested outline:")
		a.printRows(d)
		line, err := GetSimpleText(a.in, "a <title> add | r <n> remove | e <n> <title> edit | ok apply | q quit", a.out)
		if err != nil {
			return err
		}
		verb, rest, _ := strings.Cut(line, " ")
		switch verb {
		case "a":
			d.Add(rest)
		case "r":
			n, convErr := strconv.Atoi(strings.TrimSpace(rest))
			if convErr != nil {
				fmt.Fprintln(a.out, "usage: r <n>")
				continue
			}
			if err := d.Remove(n); err != nil {
				fmt.Fprintln(a.out, err)
			}
		case "e":
			idx, title, _ := strings.Cut(strings.TrimSpace(rest), " ")
			n, convErr := strconv.Atoi(idx)
			if convErr != nil {
				fmt.Fprintln(a.out, "usage: e <n> <title>")
				continue
			}
			if err := d.Set(n, title); err != nil {
				fmt.Fprintln(a.out, err)
			}
		case "ok":
			if err := d.Apply(ctx, applier(c)); err != nil {
				if errors.Is(err, outline.ErrEmpty) {
					fmt.Fprintln(a.out, err)
					continue
				}
				return err
			}
			fmt.Fprintf(a.out, "Applied %d sections\n", len(d.Titles()))
			return nil
		case "q":
			fmt.Fprintln(a.out, "Discarded")
			return nil
		default:
			fmt.Fprintf(a.out, "unknown action %q\n", verb)
		}
	}
}

func (a *App) apply(ctx context.Context, cmd *cli.Command) error {
	id, err := argID(cmd, 0, "project id")
	if err != nil {
		return err
	}
	c, err := a.authed(cmd)
	if err != nil {
		return err
	}
	d := outline.NewDraft(id, cmd.Args().Tail())
	if err := d.Apply(ctx, applier(c)); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Applied %d sections\n", len(d.Titles()))
	return nil
}

func (a *App) refine(ctx context.Context, cmd *cli.Command) error {
	id, err := argID(cmd, 0, "section id")
	if err != nil {
		return err
	}
	instructions, err := restArgs(cmd, 1, "instructions")
	if err != nil {
		return err
	}
	c, err := a.authed(cmd)
	if err != nil {
		return err
	}
	r, err := c.Refine(ctx, id, instructions)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, r.NewContent)
	return nil
}

func (a *App) save(ctx context.Context, cmd *cli.Command) error {
	id, err := argID(cmd, 0, "section id")
	if err != nil {
		return err
	}
	c, err := a.authed(cmd)
	if err != nil {
		return err
	}
	content, err := GetMultiline(a.in, "Section content", a.out)
	if err != nil {
		return err
	}
	if content == "" {
		return errNoContent
	}
	s, err := c.SaveSection(ctx, id, content, cmd.String("if-match"))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved section %d (checksum %s)\n", s.ID, s.Checksum)
	return nil
}

func (a *App) comment(ctx context.Context, cmd *cli.Command) error {
	id, err := argID(cmd, 0, "section id")
	if err != nil {
		return err
	}
	text, err := restArgs(cmd, 1, "text")
	if err != nil {
		return err
	}
	c, err := a.authed(cmd)
	if err != nil {
		return err
	}
	cm, err := c.Comment(ctx, id, text)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Comment %d added\n", cm.ID)
	return nil
}

func (a *App) export(ctx context.Context, cmd *cli.Command) error {
	id, err := argID(cmd, 0, "project id")
	if err != nil {
		return err
	}
	c, err := a.authed(cmd)
	if err != nil {
		return err
	}
	dl, err := c.Export(ctx, id)
	if err != nil {
		return err
	}
	dest := filepath.Join(cmd.String("out"), filepath.Base(dl.Name))
	if err := os.WriteFile(dest, dl.Data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Fprintf(a.out, "Wrote %s (%d bytes)\n", dest, len(dl.Data))
	return nil
}

func (a *App) search(ctx context.Context, cmd *cli.Command) error {
	q, err := restArgs(cmd, 0, "query")
	if err != nil {
		return err
	}
	c, err := a.authed(cmd)
	if err != nil {
		return err
	}
	hits, err := c.Search(ctx, q)
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		fmt.Fprintln(a.out, "No matches")
		return nil
	}
	for _, h := range hits {
		fmt.Fprintf(a.out, "[%d] %s / [%d] %s\n    %s\n", h.ProjectID, h.ProjectTitle, h.SectionID, h.SectionTitle, strings.ReplaceAll(h.Snippet, "\n", " "))
	}
	return nil
}
