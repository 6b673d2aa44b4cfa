package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/artem13815/freelance/pkg/embedding"
)

func newEmbeddingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "embeddings",
		Short: "Manage cached embeddings",
	}
	cmd.AddCommand(newBackfillCmd(), newRefreshCmd())
	return cmd
}

func newBackfillCmd() *cobra.Command {
	var (
		kinds       []string
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Generate embeddings for every entity that has none",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			if concurrency <= 0 {
				concurrency = a.cfg.Match.Concurrency
			}
			for _, raw := range kinds {
				kind, err := embedding.ParseKind(raw)
				if err != nil {
					return err
				}
				ids, err := a.embeddings.MissingIDs(ctx, kind)
				if err != nil {
					return fmt.Errorf("list missing %s embeddings: %w", kind, err)
				}
				docs := make([]embedding.Document, 0, len(ids))
				for _, id := range ids {
					doc, err := embedding.Load(ctx, a.projects, a.freelancers, kind, id)
					if err != nil {
						return err
					}
					docs = append(docs, doc)
				}
				res, err := a.embedSvc.Backfill(ctx, docs, concurrency)
				if err != nil {
					return fmt.Errorf("backfill %s: %w", kind, err)
				}
				a.log.Info("backfill done",
					zap.String("kind", string(kind)),
					zap.Int("total", res.Total),
					zap.Int("generated", res.Generated),
					zap.Int("cached", res.Cached),
				)
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d total, %d generated, %d cached\n", kind, res.Total, res.Generated, res.Cached)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&kinds, "kind", []string{string(embedding.KindProject), string(embedding.KindFreelancer)}, "entity kinds to backfill")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "parallel provider calls (defaults to MATCH_CONCURRENCY)")
	return cmd
}

func newRefreshCmd() *cobra.Command {
	var kindRaw, idRaw string
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Regenerate the embedding of one entity",
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := embedding.ParseKind(kindRaw)
			if err != nil {
				return err
			}
			id, err := uuid.Parse(idRaw)
			if err != nil {
				return fmt.Errorf("invalid --id: %w", err)
			}

			ctx := cmd.Context()
			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			doc, err := embedding.Load(ctx, a.projects, a.freelancers, kind, id)
			if err != nil {
				return err
			}
			vec, err := a.embedSvc.Refresh(ctx, doc)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %d dimensions\n", kind, id, len(vec))
			return nil
		},
	}
	cmd.Flags().StringVar(&kindRaw, "kind", "", "project | freelancer")
	cmd.Flags().StringVar(&idRaw, "id", "", "entity id (UUID)")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
