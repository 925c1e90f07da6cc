package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/management"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/transport"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/db"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/validator"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Bulk-import leads from a YAML file",
	Long: `Reads a YAML document with a "source" and a "leads" list (name, phone, email,
assignedBoeId) and ingests it through the workflow service. Leads already known
for the same phone and source are reported as duplicates.`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().String("file", "", "Path to the YAML file")
	importCmd.Flags().String("source", "", "Lead source, overrides the one in the file")
	importCmd.Flags().String("user", "", "User ID (UUID) recorded as creator")
	_ = importCmd.MarkFlagRequired("file")
	_ = importCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	source, _ := cmd.Flags().GetString("source")
	rawUser, _ := cmd.Flags().GetString("user")

	userID, err := uuid.Parse(rawUser)
	if err != nil {
		return fmt.Errorf("invalid --user: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	req, err := parseImportFile(f, source)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	val := validator.New()
	if err := transport.RegisterValidations(val); err != nil {
		return err
	}
	if err := val.Struct(req); err != nil {
		return fmt.Errorf("%s: %s", path, describeFieldErrors(validator.FieldErrors(err)))
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Env)

	ctx := cmd.Context()
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	bus := events.NewInMemoryBus(log)
	defer bus.Wait()

	svc := management.New(repository.New(pool), bus, cfg, management.WithLogger(log))
	resp, err := svc.Import(ctx, management.Actor{ID: userID, Privileged: true}, req)
	if err != nil {
		return err
	}

	printImportSummary(cmd.OutOrStdout(), resp)
	return nil
}

// parseImportFile decodes the YAML batch. A non-empty source overrides the
// one declared in the file.
func parseImportFile(r io.Reader, source string) (transport.ImportLeadsRequest, error) {
	var req transport.ImportLeadsRequest
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return transport.ImportLeadsRequest{}, errors.New("file is empty")
		}
		return transport.ImportLeadsRequest{}, err
	}

	if s := strings.TrimSpace(source); s != "" {
		req.Source = s
	}
	return req, nil
}

func describeFieldErrors(fields map[string]string) string {
	if len(fields) == 0 {
		return "invalid import file"
	}
	parts := make([]string, 0, len(fields))
	for field, tag := range fields {
		parts = append(parts, field+": "+tag)
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

func printImportSummary(w io.Writer, resp transport.ImportLeadsResponse) {
	fmt.Fprintf(w, "created=%d duplicates=%d failed=%d\n", resp.Created, resp.Duplicates, resp.Failed)
	for _, result := range resp.Results {
		if result.Status != transport.ImportFailed {
			continue
		}
		fmt.Fprintf(w, "  row %d: %s\n", result.Index, result.Error)
	}
}
