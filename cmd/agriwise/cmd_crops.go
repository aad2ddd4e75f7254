package main

import (
	"context"

	"agriwise-client/internal/api"
	"agriwise-client/internal/classify"
	"agriwise-client/internal/params"
	"agriwise-client/internal/query"

	"github.com/spf13/cobra"
)

func newCropsCmd(rt *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crops",
		Short: "Crop recommendations, history and reference data",
	}
	cmd.AddCommand(
		newCropsRecommendCmd(rt),
		newCropsHistoryCmd(rt),
		newCropsStatsCmd(rt),
		newCropsListCmd(rt),
		newCropsRequirementsCmd(rt),
	)
	return cmd
}

func newCropsRecommendCmd(rt *app) *cobra.Command {
	var form params.CropForm
	cmd := &cobra.Command{
		Use:     "recommend",
		Short:   "Recommend a crop for a soil and climate sample",
		Example: `  agriwise crops recommend --n 90 --p 42 --k 43 --temperature 20.8 --humidity 82 --ph 6.5 --rainfall 202.9`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ca := query.NewCropAdvisor(rt.validator, rt.client, rt.history, rt.stats, rt.session, rt.log)
			if err := ca.Submit(cmd.Context(), form); err != nil {
				return rt.inline(err)
			}
			if err := ca.Wait(cmd.Context()); err != nil {
				ca.Drain()
				return err
			}

			s := ca.Snapshot()
			if s.Err != nil {
				rt.out.Error(s.Err, s.Disposition)
				return errReported
			}
			rt.out.Stats(ca.Stats().Snapshot())
			rt.out.Crop(s.Result)
			return nil
		},
	}
	bindCropFlags(cmd, &form)
	return cmd
}

func bindCropFlags(cmd *cobra.Command, form *params.CropForm) {
	f := cmd.Flags()
	f.StringVar(&form.N, "n", "", "Nitrogen, 0 to 200")
	f.StringVar(&form.P, "p", "", "Phosphorus, 0 to 200")
	f.StringVar(&form.K, "k", "", "Potassium, 0 to 250")
	f.StringVar(&form.Temperature, "temperature", "", "Temperature in C, -10 to 50")
	f.StringVar(&form.Humidity, "humidity", "", "Relative humidity, 0 to 100")
	f.StringVar(&form.PH, "ph", "", "Soil pH, 0 to 14")
	f.StringVar(&form.Rainfall, "rainfall", "", "Rainfall in mm, 0 to 3500")
	f.StringVar(&form.Location, "location", "", "Sample location")
	f.StringVar(&form.LandID, "land-id", "", "Land record the sample belongs to")
}

func newCropsHistoryCmd(rt *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List your past crop recommendations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cred, _ := rt.session.Credential()
			entries, err := rt.history.Refresh(cmd.Context(), cred)
			if err != nil {
				return rt.report(api.OpCropHistory, err)
			}
			rt.out.History(classify.History(entries))
			return nil
		},
	}
}

func newCropsStatsCmd(rt *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarise your crop recommendations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cred, _ := rt.session.Credential()
			snap, err := rt.stats.Refresh(cmd.Context(), cred)
			if err != nil {
				return rt.report(api.OpCropStats, err)
			}
			rt.out.Stats(snap)
			return nil
		},
	}
}

func newCropsListCmd(rt *app) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the crops the model knows",
		RunE: func(cmd *cobra.Command, args []string) error {
			if refresh {
				rt.invalidateCatalog(cmd.Context())
			}
			crops, err := rt.catalog.AvailableCrops(cmd.Context())
			if err != nil {
				return rt.report(api.OpAvailableCrops, err)
			}
			rt.out.Crops(crops)
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Drop the cached list and fetch it again")
	return cmd
}

func newCropsRequirementsCmd(rt *app) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "requirements <crop>",
		Short: "Show a crop's optimal growing conditions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if refresh {
				rt.invalidateCatalog(cmd.Context(), args[0])
			}
			req, err := rt.catalog.CropRequirements(cmd.Context(), args[0])
			if err != nil {
				return rt.report(api.OpCropRequirements, err)
			}
			rt.out.Requirements(req)
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Drop the cached entry and fetch it again")
	return cmd
}

// invalidateCatalog drops cached catalog entries. A failure only costs a
// stale read, so it is logged and the command carries on.
func (a *app) invalidateCatalog(ctx context.Context, crops ...string) {
	if err := a.catalog.Invalidate(ctx, crops...); err != nil {
		a.log.Warn("catalog invalidation failed", map[string]interface{}{"error": err})
	}
}
