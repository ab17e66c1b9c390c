// Package lint resolves many encoder configuration files in parallel and reports
// the outcome of each one.
package lint

import (
	"context"
	"errors"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Tubbz-alt/thor/internal/params"
)

// Report is the outcome of one configuration file.
type Report struct {
	Path     string   `json:"path"`
	OK       bool     `json:"ok"`
	Tier     string   `json:"tier,omitempty"`
	Code     string   `json:"code,omitempty"`
	Message  string   `json:"message,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Includes int      `json:"includes"`
}

// Options configures a lint run.
type Options struct {
	// Concurrency bounds the files checked at once. Zero uses GOMAXPROCS.
	Concurrency int

	// Args are appended after "-cf <path>" for every file, e.g. to pin an input.
	Args []string

	// Session is the template for every per-file session. Source defaults to "lint".
	Session params.Options
}

// Run checks every path and returns the reports in the order of paths. A parse or
// validation failure is recorded in its report; the returned error is only set
// when ctx ends before all files were checked.
func Run(ctx context.Context, paths []string, opts Options) ([]Report, error) {
	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	sessionOpts := opts.Session
	if sessionOpts.Source == "" {
		sessionOpts.Source = "lint"
	}

	reports := make([]Report, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, path := range paths {
		reports[i].Path = path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			reports[i] = check(path, opts.Args, sessionOpts)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return reports, err
	}
	return reports, nil
}

func check(path string, extra []string, opts params.Options) Report {
	args := append([]string{params.IncludeFlag, path}, extra...)

	session := params.NewSession(opts)
	res, err := session.Resolve(args)
	report := Report{
		Path:     path,
		Includes: len(session.Includes()),
	}
	if err != nil {
		report.Message = err.Error()
		var perr *params.Error
		if errors.As(err, &perr) {
			report.Tier = string(perr.Tier)
			report.Code = perr.Code
			report.Message = perr.Message
		}
		report.Warnings = session.Warnings()
		return report
	}

	report.OK = true
	report.Warnings = res.Warnings
	return report
}

// Failed counts the reports that did not pass.
func Failed(reports []Report) int {
	n := 0
	for _, r := range reports {
		if !r.OK {
			n++
		}
	}
	return n
}
