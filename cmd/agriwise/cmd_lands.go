package main

import (
	"agriwise-client/internal/classify"
	apperrors "agriwise-client/internal/common/errors"
	"agriwise-client/internal/params"
	"agriwise-client/internal/query"
	"agriwise-client/internal/render"

	"github.com/spf13/cobra"
)

func newLandsCmd(rt *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lands",
		Short: "Farmland recommendations",
	}
	cmd.AddCommand(newLandsRecommendCmd(rt))
	return cmd
}

func newLandsRecommendCmd(rt *app) *cobra.Command {
	var form params.LandForm
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Rank farmland against your criteria",
		Long: `Sends the search criteria to the service and prints the ranked lands.
Numeric fields that cannot be parsed fall back to their defaults.`,
		Example: `  agriwise lands recommend --purpose agricultural --max-price 5000000 --limit 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ls := query.NewLandSearch(rt.validator, rt.client, rt.session, rt.log)
			if err := ls.Submit(cmd.Context(), form); err != nil {
				return rt.inline(err)
			}
			if err := ls.Wait(cmd.Context()); err != nil {
				ls.Drain()
				return err
			}
			return rt.showLand(ls.Snapshot())
		},
	}
	bindLandFlags(cmd, &form)
	return cmd
}

func bindLandFlags(cmd *cobra.Command, form *params.LandForm) {
	f := cmd.Flags()
	f.StringVar(&form.Purpose, "purpose", "", "agricultural, residential, commercial, industrial, mixed or any")
	f.StringVar(&form.MinSize, "min-size", "", "Minimum size in acres")
	f.StringVar(&form.MaxSize, "max-size", "", "Maximum size in acres")
	f.StringVar(&form.MinPrice, "min-price", "", "Minimum total price")
	f.StringVar(&form.MaxPrice, "max-price", "", "Maximum total price")
	f.StringVar(&form.LocationPreference, "location", "", "Preferred location")
	f.StringVar(&form.ConnectivityImportance, "connectivity", "", "Connectivity weight, 0 to 1")
	f.StringVar(&form.InfrastructureImportance, "infrastructure", "", "Infrastructure weight, 0 to 1")
	f.StringVar(&form.Limit, "limit", "", "Number of results")
}

func (a *app) showLand(s query.Snapshot[*classify.LandView]) error {
	if s.Err != nil {
		a.out.Error(s.Err, s.Disposition)
		return errReported
	}
	a.out.Lands(s.Result)
	return nil
}

// inline prints a synchronous rejection, usually field validation, under the form.
func (a *app) inline(err error) error {
	showRejection(a.out, err)
	return errReported
}

func showRejection(view *render.Renderer, err error) {
	stdErr := apperrors.Normalize(err)
	disp := apperrors.DispositionBanner
	if stdErr.Code == apperrors.ErrCodeValidation {
		disp = apperrors.DispositionInline
	}
	view.Error(stdErr, disp)
}
