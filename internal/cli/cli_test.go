package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/starford/draftdeck/internal/api"
	"github.com/starford/draftdeck/internal/auth"
	"github.com/starford/draftdeck/internal/documents"
	"github.com/starford/draftdeck/internal/llm"
	"github.com/starford/draftdeck/internal/testutil"
)

type harness struct {
	srv     *httptest.Server
	session string
}

func newHarness(t *testing.T) harness {
	t.Helper()
	oldTerm := isTerminal
	isTerminal = func(int) bool { return false }
	t.Cleanup(func() { isTerminal = oldTerm })

	db := testutil.TestDB(t)
	tokens, err := auth.NewTokens("test-secret", "HS256", time.Hour)
	require.NoError(t, err)
	docs := documents.NewService(db, llm.NewMock(), testutil.TestPrompts(t))
	srv := httptest.NewServer(api.NewRouter(auth.NewService(db, tokens), docs, nil))
	t.Cleanup(srv.Close)
	return harness{srv: srv, session: filepath.Join(t.TempDir(), "session")}
}

func (h harness) run(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := NewApp(strings.NewReader(input), &out, WithHTTPClient(h.srv.Client()))
	argv := append([]string{"draftctl", "--server", h.srv.URL, "--session", h.session}, args...)
	err := app.Command().Run(context.Background(), argv)
	return out.String(), err
}

func TestGetSimpleText(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("hello world\n"))
	var out bytes.Buffer
	got, err := GetSimpleText(in, "Name?", &out)
	if err != nil || got != "hello world" {
		t.Fatalf("got %q, err=%v", got, err)
	}
}

func TestGetMultilineEOF(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("a\nb"))
	var out bytes.Buffer
	got, err := GetMultiline(in, "Text", &out)
	if err != nil || got != "a\nb" {
		t.Fatalf("got %q, err=%v", got, err)
	}
}

func TestGetMultilineKeepsParagraphs(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("Para one\n\nPara two\n.\nignored\n"))
	var out bytes.Buffer
	got, err := GetMultiline(in, "Text", &out)
	require.NoError(t, err)
	require.Equal(t, "Para one\n\nPara two", got)

	rest, err := in.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "ignored\n", rest)
}

func TestGetMultilineReadError(t *testing.T) {
	in := bufio.NewReader(iotest.ErrReader(errors.New("broken pipe")))
	var out bytes.Buffer
	_, err := GetMultiline(in, "Text", &out)
	require.EqualError(t, err, "broken pipe")
}

func TestGetPasswordTerminal(t *testing.T) {
	oldTerm, oldRead := isTerminal, readPassword
	defer func() { isTerminal, readPassword = oldTerm, oldRead }()
	isTerminal = func(int) bool { return true }
	readPassword = func(int) ([]byte, error) { return []byte("s3cret"), nil }

	var out bytes.Buffer
	pw, err := GetPassword(bufio.NewReader(strings.NewReader("")), &out)
	require.NoError(t, err)
	require.Equal(t, "s3cret", pw)

	readPassword = func(int) ([]byte, error) { return nil, errors.New("boom") }
	_, err = GetPassword(bufio.NewReader(strings.NewReader("")), &out)
	require.Error(t, err)
}

func TestSessionFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session")
	tok, err := LoadToken(path)
	require.NoError(t, err)
	require.Empty(t, tok)

	require.NoError(t, SaveToken(path, "abc"))
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	tok, err = LoadToken(path)
	require.NoError(t, err)
	require.Equal(t, "abc", tok)

	require.NoError(t, ClearToken(path))
	require.NoError(t, ClearToken(path))
}

func TestNotLoggedIn(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "", "projects")
	require.ErrorIs(t, err, errNotLoggedIn)
}

func TestWorkflow(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "pw\n", "register", "cli@example.com")
	require.NoError(t, err)
	require.Contains(t, out, "Registered as cli@example.com")

	out, err = h.run(t, "", "create", "--type", "pptx", "--prompt", "robots", "Deck", "Intro")
	require.NoError(t, err)
	require.Contains(t, out, "Created project 1 (pptx) with 1 sections")

	// Remove suggestion 0, add one, apply.
	out, err = h.run(t, "r 0\na Closing\nok\n", "suggest", "1", "2")
	require.NoError(t, err)
	require.Contains(t, out, "Applied")

	out, err = h.run(t, "", "apply", "1", "Appendix")
	require.NoError(t, err)
	require.Contains(t, out, "Applied 1 sections")

	_, err = h.run(t, "", "generate", "1")
	require.NoError(t, err)

	out, err = h.run(t, "", "open", "1")
	require.NoError(t, err)
	require.Contains(t, out, "# Deck [pptx]")
	require.Contains(t, out, "Closing")
	require.Contains(t, out, "about: robots")

	out, err = h.run(t, "", "refine", "1", "make", "it", "shorter")
	require.NoError(t, err)
	require.Contains(t, out, "instructions: make it shorter")

	out, err = h.run(t, "Line one\nLine two\n\n", "save", "1")
	require.NoError(t, err)
	require.Contains(t, out, "Saved section 1")

	out, err = h.run(t, "", "comment", "1", "nice", "slide")
	require.NoError(t, err)
	require.Contains(t, out, "added")

	out, err = h.run(t, "", "search", "Line", "two")
	require.NoError(t, err)
	require.Contains(t, out, "Deck")

	dir := t.TempDir()
	out, err = h.run(t, "", "export", "--out", dir, "1")
	require.NoError(t, err)
	require.Contains(t, out, "project_1.pptx")
	data, err := os.ReadFile(filepath.Join(dir, "project_1.pptx"))
	require.NoError(t, err)
	require.Equal(t, "PK", string(data[:2]))

	out, err = h.run(t, "", "projects")
	require.NoError(t, err)
	require.Contains(t, out, "Deck")

	_, err = h.run(t, "", "logout")
	require.NoError(t, err)
	_, err = h.run(t, "", "projects")
	require.ErrorIs(t, err, errNotLoggedIn)
}

func TestSuggestRefusesEmptyApply(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "pw\n", "register", "cli@example.com")
	require.NoError(t, err)
	_, err = h.run(t, "", "create", "Doc")
	require.NoError(t, err)

	out, err := h.run(t, "r 0\nr 0\nok\nq\n", "suggest", "1", "1")
	require.NoError(t, err)
	require.Contains(t, out, "No titles to apply")
	require.Contains(t, out, "Discarded")
}

func TestSaveKeepsContent(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "pw\n", "register", "cli@example.com")
	require.NoError(t, err)
	_, err = h.run(t, "", "create", "Doc", "Intro")
	require.NoError(t, err)

	_, err = h.run(t, "Para one\n\nPara two\n", "save", "1")
	require.NoError(t, err)
	out, err := h.run(t, "", "open", "1")
	require.NoError(t, err)
	require.Contains(t, out, "Para one\n\nPara two\n")

	_, err = h.run(t, "", "save", "1")
	require.ErrorIs(t, err, errNoContent)
	_, err = h.run(t, "\n\n.\n", "save", "1")
	require.ErrorIs(t, err, errNoContent)

	out, err = h.run(t, "", "open", "1")
	require.NoError(t, err)
	require.Contains(t, out, "Para one\n\nPara two\n")
}

func TestServerErrorsSurfaceDetail(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "wrong\n", "login", "nobody@example.com")
	require.EqualError(t, err, "Invalid credentials")

	_, err = h.run(t, "pw\n", "register", "cli@example.com")
	require.NoError(t, err)
	_, err = h.run(t, "", "open", "42")
	require.EqualError(t, err, "Project not found")
	_, err = h.run(t, "", "open", "abc")
	require.Error(t, err)
}
