package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"agriwise-client/internal/api"
	"agriwise-client/internal/classify"
	apperrors "agriwise-client/internal/common/errors"
	"agriwise-client/internal/params"
	"agriwise-client/internal/query"
	"agriwise-client/internal/render"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const shellHelp = `Commands:
  land [key=value ...]     purpose min_size max_size min_price max_price location
                           connectivity infrastructure limit
  crop key=value ...       n p k temperature humidity ph rainfall location land_id
  cancel [land|crop]       abandon a pending request
  status                   show both forms' state
  history | stats          your crop history and summary
  crops | requirements <crop>
  refresh [crop ...]       drop cached catalog entries
  login <user> <password> | logout | whoami
  help | quit`

func newShellCmd(rt *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive session with live land and crop forms",
		RunE: func(cmd *cobra.Command, args []string) error {
			sh := newShell(rt, cmd.InOrStdin(), cmd.OutOrStdout())
			defer sh.close()
			return sh.run(cmd.Context())
		},
	}
}

// shell keeps one query machine per form for the whole session.
type shell struct {
	rt      *app
	in      io.Reader
	out     io.Writer
	view    *render.Renderer
	land    *query.LandSearch
	crop    *query.CropAdvisor
	metrics *http.Server
}

func newShell(rt *app, in io.Reader, out io.Writer) *shell {
	w := &lockedWriter{w: out}
	sh := &shell{
		rt:   rt,
		in:   in,
		out:  w,
		view: render.New(w),
		land: query.NewLandSearch(rt.validator, rt.client, rt.session, rt.log),
		crop: query.NewCropAdvisor(rt.validator, rt.client, rt.history, rt.stats, rt.session, rt.log),
	}

	sh.land.OnChange(func(s query.Snapshot[*classify.LandView]) {
		switch {
		case s.Status == query.StatusSubmitting:
			fmt.Fprintln(sh.out, "Searching lands...")
		case s.Status == query.StatusSuccess:
			sh.view.Lands(s.Result)
		case s.Err != nil:
			sh.view.Error(s.Err, s.Disposition)
		}
	})
	sh.crop.OnChange(func(s query.Snapshot[*classify.CropView]) {
		switch {
		case s.Status == query.StatusSubmitting:
			fmt.Fprintln(sh.out, "Analyzing soil...")
		case s.Status == query.StatusSuccess:
			sh.view.Crop(s.Result)
		case s.Err != nil:
			sh.view.Error(s.Err, s.Disposition)
		}
	})
	return sh
}

func (sh *shell) run(ctx context.Context) error {
	if sh.rt.cfg.Metrics.Enabled {
		sh.serveMetrics(sh.rt.cfg.Metrics.Address)
	}

	fmt.Fprintln(sh.out, "agriwise shell. Type \"help\" for commands.")
	if _, ok := sh.rt.session.Credential(); !ok {
		fmt.Fprintln(sh.out, "Not logged in. Use: login <user> <password>")
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(sh.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Fprint(sh.out, "> ")
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := sh.exec(ctx, line); quit {
				return nil
			}
		}
	}
}

// exec runs one command line and reports whether the shell should exit.
func (sh *shell) exec(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	switch name {
	case "quit", "exit":
		return true
	case "help", "?":
		fmt.Fprintln(sh.out, shellHelp)
	case "land":
		form, err := landFormFromPairs(args)
		if err != nil {
			fmt.Fprintln(sh.out, err)
			return false
		}
		if err := sh.land.Submit(ctx, form); err != nil {
			sh.rejected(err)
		}
	case "crop":
		form, err := cropFormFromPairs(args)
		if err != nil {
			fmt.Fprintln(sh.out, err)
			return false
		}
		if err := sh.crop.Submit(ctx, form); err != nil {
			sh.rejected(err)
		}
	case "cancel":
		sh.cancel(args)
	case "status":
		fmt.Fprintf(sh.out, "land: %s\ncrop: %s\n", sh.land.Status(), sh.crop.Status())
	case "history":
		sh.view.History(classify.History(sh.crop.History().Entries()))
	case "stats":
		sh.view.Stats(sh.crop.Stats().Snapshot())
	case "crops":
		crops, err := sh.rt.catalog.AvailableCrops(ctx)
		if err != nil {
			sh.failed(api.OpAvailableCrops, err)
			return false
		}
		sh.view.Crops(crops)
	case "requirements":
		if len(args) != 1 {
			fmt.Fprintln(sh.out, "usage: requirements <crop>")
			return false
		}
		req, err := sh.rt.catalog.CropRequirements(ctx, args[0])
		if err != nil {
			sh.failed(api.OpCropRequirements, err)
			return false
		}
		sh.view.Requirements(req)
	case "refresh":
		sh.rt.invalidateCatalog(ctx, args...)
		fmt.Fprintln(sh.out, "Catalog cache cleared")
	case "login":
		if len(args) != 2 {
			fmt.Fprintln(sh.out, "usage: login <user> <password>")
			return false
		}
		sh.login(ctx, args[0], args[1])
	case "logout":
		if err := sh.rt.session.Logout(ctx); err != nil {
			fmt.Fprintln(sh.out, "logout failed:", err)
			return false
		}
		fmt.Fprintln(sh.out, "Logged out")
	case "whoami":
		if _, ok := sh.rt.session.Credential(); !ok {
			fmt.Fprintln(sh.out, "Not logged in")
			return false
		}
		fmt.Fprintln(sh.out, sh.rt.session.Username())
	default:
		fmt.Fprintf(sh.out, "unknown command %q, try \"help\"\n", name)
	}
	return false
}

func (sh *shell) cancel(args []string) {
	target := ""
	if len(args) > 0 {
		target = strings.ToLower(args[0])
	}
	cancelled := false
	if target == "" || target == query.FormLand {
		cancelled = sh.land.Cancel() || cancelled
	}
	if target == "" || target == query.FormCrop {
		cancelled = sh.crop.Cancel() || cancelled
	}
	if !cancelled {
		fmt.Fprintln(sh.out, "nothing to cancel")
	}
}

func (sh *shell) login(ctx context.Context, username, password string) {
	cred, err := sh.rt.client.Login(ctx, username, password)
	if err != nil {
		sh.failed(api.OpLogin, err)
		return
	}
	if err := sh.rt.session.Login(ctx, cred); err != nil {
		fmt.Fprintln(sh.out, "could not save session:", err)
		return
	}
	fmt.Fprintf(sh.out, "Logged in as %s\n", cred.Username)
}

func (sh *shell) rejected(err error) {
	if errors.Is(err, apperrors.ErrSubmissionInFlight) {
		fmt.Fprintln(sh.out, "a request is already running; wait or \"cancel\"")
		return
	}
	showRejection(sh.view, err)
}

func (sh *shell) failed(op string, err error) {
	sh.rt.reportTo(sh.view, op, err)
}

func (sh *shell) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	sh.metrics = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := sh.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sh.rt.log.Error("metrics server failed", map[string]interface{}{"error": err, "addr": addr})
		}
	}()
	sh.rt.log.Info("metrics server listening", map[string]interface{}{"addr": addr})
}

func (sh *shell) close() {
	sh.land.Drain()
	sh.crop.Drain()
	if sh.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = sh.metrics.Shutdown(ctx)
	}
}

var landKeys = map[string]func(*params.LandForm, string){
	"purpose":        func(f *params.LandForm, v string) { f.Purpose = v },
	"min_size":       func(f *params.LandForm, v string) { f.MinSize = v },
	"max_size":       func(f *params.LandForm, v string) { f.MaxSize = v },
	"min_price":      func(f *params.LandForm, v string) { f.MinPrice = v },
	"max_price":      func(f *params.LandForm, v string) { f.MaxPrice = v },
	"location":       func(f *params.LandForm, v string) { f.LocationPreference = v },
	"connectivity":   func(f *params.LandForm, v string) { f.ConnectivityImportance = v },
	"infrastructure": func(f *params.LandForm, v string) { f.InfrastructureImportance = v },
	"limit":          func(f *params.LandForm, v string) { f.Limit = v },
}

var cropKeys = map[string]func(*params.CropForm, string){
	"n":           func(f *params.CropForm, v string) { f.N = v },
	"p":           func(f *params.CropForm, v string) { f.P = v },
	"k":           func(f *params.CropForm, v string) { f.K = v },
	"temperature": func(f *params.CropForm, v string) { f.Temperature = v },
	"humidity":    func(f *params.CropForm, v string) { f.Humidity = v },
	"ph":          func(f *params.CropForm, v string) { f.PH = v },
	"rainfall":    func(f *params.CropForm, v string) { f.Rainfall = v },
	"location":    func(f *params.CropForm, v string) { f.Location = v },
	"land_id":     func(f *params.CropForm, v string) { f.LandID = v },
}

func landFormFromPairs(args []string) (params.LandForm, error) {
	var form params.LandForm
	err := applyPairs(args, func(k, v string) bool {
		set, ok := landKeys[k]
		if ok {
			set(&form, v)
		}
		return ok
	})
	return form, err
}

func cropFormFromPairs(args []string) (params.CropForm, error) {
	var form params.CropForm
	err := applyPairs(args, func(k, v string) bool {
		set, ok := cropKeys[k]
		if ok {
			set(&form, v)
		}
		return ok
	})
	return form, err
}

// applyPairs feeds key=value arguments to set. Keys are case-insensitive and
// accept dashes or the wire names with underscores.
func applyPairs(args []string, set func(key, value string) bool) error {
	var unknown []string
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("expected key=value, got %q", arg)
		}
		key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(k)), "-", "_")
		key = strings.TrimSuffix(strings.TrimSuffix(key, "_importance"), "_preference")
		if !set(key, v) {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown field(s): %s", strings.Join(unknown, ", "))
	}
	return nil
}
