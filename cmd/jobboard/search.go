package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/jonathan/jobboard/internal/jobboard"
	"github.com/jonathan/jobboard/internal/types"
	"github.com/spf13/cobra"
)

type searchOptions struct {
	seedPath string
	term     string
	location string
	jobType  string
	level    string
	asJSON   bool
}

var searchOpts searchOptions

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Filter the seed jobs from the command line",
	Long:  "Load a seed fixture and print the jobs matching every given criterion. Empty criteria place no constraint.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return search(cmd.OutOrStdout(), searchOpts)
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchOpts.seedPath, "seed", "", "Seed fixture to load (default: built-in)")
	searchCmd.Flags().StringVarP(&searchOpts.term, "query", "q", "", "Substring of title, company or description")
	searchCmd.Flags().StringVar(&searchOpts.location, "location", "", "Substring of location")
	searchCmd.Flags().StringVar(&searchOpts.jobType, "type", "", "Job type (full-time, part-time, contract, internship, remote)")
	searchCmd.Flags().StringVar(&searchOpts.level, "level", "", "Experience level (entry, mid, senior, executive)")
	searchCmd.Flags().BoolVar(&searchOpts.asJSON, "json", false, "Print matching jobs as JSON")
	rootCmd.AddCommand(searchCmd)
}

func search(out io.Writer, opts searchOptions) error {
	if opts.jobType != "" && !types.JobType(opts.jobType).Valid() {
		return fmt.Errorf("unknown job type %q", opts.jobType)
	}
	if opts.level != "" && !types.ExperienceLevel(opts.level).Valid() {
		return fmt.Errorf("unknown experience level %q", opts.level)
	}

	fx, err := loadFixture(opts.seedPath)
	if err != nil {
		return err
	}
	board := jobboard.New(fx.Snapshot, jobboard.Options{})
	board.SetSearchFilters(jobboard.FilterUpdate{
		SearchTerm:      &opts.term,
		Location:        &opts.location,
		Type:            &opts.jobType,
		ExperienceLevel: &opts.level,
	})
	jobs := board.FilteredJobs()

	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(jobs)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCOMPANY\tLOCATION\tTYPE\tLEVEL")
	for _, job := range jobs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			job.ID, job.Title, job.Company, job.Location, job.Type, job.ExperienceLevel)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%d of %d jobs\n", len(jobs), len(board.Jobs()))
	return err
}
