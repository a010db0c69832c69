package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/menurank/internal/domain/search/filter"
	recommenduc "github.com/kailas-cloud/menurank/internal/usecase/recommend"
)

var (
	recTopK      int
	recLocation  string
	recNoExtract bool
	recJSON      bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend <query>",
	Short: "Recommend menu items for a free-text request",
	Long: `Extract filters from the request, retrieve similar menu items and print
the ranked recommendations.

Examples:
  menurank recommend "spicy veg biryani under 300"
  menurank recommend "something sweet" --top-k 10 --location Indiranagar --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRecommend,
}

func init() {
	rootCmd.AddCommand(recommendCmd)
	recommendCmd.Flags().IntVarP(&recTopK, "top-k", "k", 0, "number of recommendations (default 5)")
	recommendCmd.Flags().StringVar(&recLocation, "location", "", "user location, boosts items delivered there")
	recommendCmd.Flags().BoolVar(&recNoExtract, "no-extract", false, "skip filter extraction")
	recommendCmd.Flags().BoolVar(&recJSON, "json", false, "output as JSON")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if !recNoExtract {
		if err := a.recommend.LoadVocabulary(ctx, a.source); err != nil {
			return fmt.Errorf("load vocabulary: %w", err)
		}
	}

	req := recommenduc.Request{
		Query:        strings.Join(args, " "),
		TopK:         recTopK,
		UserLocation: recLocation,
	}
	if recNoExtract {
		req.Filters = &filter.QueryFilters{}
	}

	res, err := a.recommend.GetRecommendations(ctx, req)
	if err != nil {
		return fmt.Errorf("recommend: %w", err)
	}

	out := cmd.OutOrStdout()
	if recJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	printResult(out, res)
	return nil
}

func printResult(w io.Writer, res recommenduc.Result) {
	filters := []byte("none")
	if !res.Filters.IsEmpty() {
		filters, _ = json.Marshal(res.Filters)
	}
	fmt.Fprintf(w, "Query:      %s\n", res.Query)
	fmt.Fprintf(w, "Filters:    %s (extracted=%v)\n", filters, res.Extracted)
	fmt.Fprintf(w, "Candidates: %d\n\n", res.Candidates)

	if res.NoResults() {
		fmt.Fprintln(w, "No items match the request.")
		return
	}

	for i, r := range res.Recommendations {
		fmt.Fprintf(w, "%d. %s - %s (%s, %s)\n", i+1, r.ItemName, r.RestaurantName, r.CuisineType, r.Location)
		fmt.Fprintf(w, "   price %.0f | %d min | rating %.1f | score %.3f (similarity %.3f)\n",
			r.Price, r.DeliveryTimeMinutes, r.AverageRating, r.FinalScore, r.Similarity)
		if len(r.ReasonTags) > 0 {
			fmt.Fprintf(w, "   %s\n", strings.Join(r.ReasonTags, ", "))
		}
	}
}
