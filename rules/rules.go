//go:build ruleguard

// Package gorules contains custom linting rules for golangci-lint via ruleguard.
// They keep network access, error construction and test contexts consistent
// across the pokeart packages.
package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

// SharedHTTPClient detects ad-hoc HTTP clients outside internal/httpclient.
//
// Old pattern:
//
//	resp, err := http.Get(url)
//
// New pattern:
//
//	resp, err := hc.Get(ctx, url)
//
// The shared client applies the configured timeout, User-Agent and metrics
// hook, and lets tests inject a transport.
func SharedHTTPClient(m dsl.Matcher) {
	m.Match(
		`http.Get($*_)`,
		`http.Head($*_)`,
		`http.Post($*_)`,
		`http.DefaultClient`,
	).
		Where(!m.File().PkgPath.Matches(`internal/httpclient$`)).
		Report("use the shared *httpclient.Client instead of net/http package-level clients")

	m.Match(`&http.Client{$*_}`, `http.Client{$*_}`).
		Where(!m.File().PkgPath.Matches(`internal/httpclient$`) && !m.File().Name.Matches(`_test\.go$`)).
		Report("construct HTTP clients with httpclient.New so timeouts and hooks apply")
}

// CategorizedErrors detects plain fmt.Errorf returns from the download
// pipeline packages, whose callers branch on error categories.
//
// Old pattern:
//
//	return nil, fmt.Errorf("record not found: %d", id)
//
// New pattern:
//
//	return nil, errors.Newf("record not found: %d", id).
//	    Component("pokeapi").
//	    Category(errors.CategoryNotFound).
//	    Build()
func CategorizedErrors(m dsl.Matcher) {
	m.Match(
		`return fmt.Errorf($*_)`,
		`return $_, fmt.Errorf($*_)`,
		`return $_, $_, fmt.Errorf($*_)`,
	).
		Where(m.File().PkgPath.Matches(`internal/(pokeapi|imagesaver|downloader)$`) &&
			!m.File().Name.Matches(`_test\.go$`)).
		Report("return an internal/errors EnhancedError with a category instead of fmt.Errorf")
}

// LibraryStdout detects direct printing from internal packages. Stdout is
// reserved for command results written through cobra.
func LibraryStdout(m dsl.Matcher) {
	m.Match(
		`fmt.Println($*_)`,
		`fmt.Printf($*_)`,
		`fmt.Print($*_)`,
		`log.Println($*_)`,
		`log.Printf($*_)`,
	).
		Where(m.File().PkgPath.Matches(`/internal/`) && !m.File().Name.Matches(`_test\.go$`)).
		Report("use the module logger from internal/logger instead of printing")
}

// TestingContext detects context.Background() or context.TODO() in test
// functions and suggests using t.Context() instead (Go 1.24+).
func TestingContext(m dsl.Matcher) {
	m.Match(
		`$ctx := context.Background()`,
		`$ctx = context.Background()`,
		`$ctx := context.TODO()`,
		`$ctx = context.TODO()`,
	).
		Where(m.File().Name.Matches(`_test\.go$`)).
		Report("in tests, use t.Context() instead of a detached context")

	m.Match(
		`$fn(context.Background(), $*args)`,
		`$fn(context.TODO(), $*args)`,
	).
		Where(m.File().Name.Matches(`_test\.go$`)).
		Report("in tests, use t.Context() instead of a detached context")
}

// WaitGroupModernize detects WaitGroup patterns that can use wg.Go() (Go 1.25+).
func WaitGroupModernize(m dsl.Matcher) {
	m.Match(`go func() { defer $wg.Done(); $*_ }()`).
		Where(m["wg"].Type.Is("*sync.WaitGroup")).
		Report("Use $wg.Go(func() { ... }) instead of go func() { defer $wg.Done(); ... }() (Go 1.25+)").
		Suggest("$wg.Go(func() { $*_ })")

	m.Match(`$wg.Add(1)`).
		Where(m["wg"].Type.Is("*sync.WaitGroup")).
		Report("Consider using $wg.Go() which calls Add(1) automatically (Go 1.25+)")
}
