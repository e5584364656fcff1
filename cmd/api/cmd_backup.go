package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"winelist/internal/config"
	"winelist/internal/logger"
	"winelist/internal/server"
	"winelist/internal/services"
	"winelist/internal/utils"
)

var (
	exportOut   string
	auditStrict bool
)

// exportCmd writes the stored document to a backup file
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the current document to a backup file",
	Long: `Write the stored document to db-backup-<timestamp>.json in the current
directory, or to the path given with --out. Use --out - for stdout.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

// importCmd replaces the stored document with a backup file
var importCmd = &cobra.Command{
	Use:   "import <backup.json>",
	Short: "Replace the document with a backup file",
	Long: `Validate a backup file, copy the current document aside as a safety backup
and replace it. A running server that watches the file picks the change up
and pushes it to connected clients.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

// restoreCmd rolls the document back to a safety backup
var restoreCmd = &cobra.Command{
	Use:   "restore <snapshot>",
	Short: "Replace the document with a safety backup taken by an import",
	Long: `Restore a safety backup. With the file store the snapshot is the path (or
file name) of a db.safety-backup-*.json file; with Postgres it is the snapshot id
printed by the import. The current document is snapshotted first.`,
	Args: cobra.ExactArgs(1),
	RunE: runRestore,
}

// auditCmd prints the integrity report
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Check references between wines, wineries and menu",
	Args:  cobra.NoArgs,
	RunE:  runAudit,
}

// hashPasswordCmd prints an ADMIN_PASSWORD_HASH value
var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Hash an admin password for ADMIN_PASSWORD_HASH",
	Long: `Print the argon2id hash of a password. Without an argument the password is
read from the first line of stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHashPassword,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default db-backup-<timestamp>.json, - for stdout)")
	auditCmd.Flags().BoolVar(&auditStrict, "strict", false, "exit with an error when the report finds problems")
}

// withDocuments opens the configured store for a one-off command.
func withDocuments(ctx context.Context, fn func(ctx context.Context, docs *services.DocumentService) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	repo, err := server.OpenStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			log.Warn("failed to close store", zap.Error(err))
		}
	}()

	// No sockets in this process.
	return fn(ctx, services.NewDocumentService(repo, nil, log))
}

func runExport(cmd *cobra.Command, args []string) error {
	return withDocuments(cmd.Context(), func(ctx context.Context, docs *services.DocumentService) error {
		backup, err := docs.Export(ctx)
		if err != nil {
			return err
		}
		out := exportOut
		switch out {
		case "-":
			_, err = cmd.OutOrStdout().Write(backup.Body)
			return err
		case "":
			out = backup.Filename
		}
		if err := os.WriteFile(out, backup.Body, 0o644); err != nil {
			return fmt.Errorf("failed to write backup: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s\n", out)
		return nil
	})
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read backup: %w", err)
	}
	if !json.Valid(data) {
		return fmt.Errorf("%s is not valid JSON", args[0])
	}

	return withDocuments(cmd.Context(), func(ctx context.Context, docs *services.DocumentService) error {
		snapshot, err := docs.Import(ctx, data)
		if err != nil {
			return err
		}
		if snapshot != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Safety backup created at %s\n", snapshot)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Backup imported successfully. Database updated.")
		return nil
	})
}

func runRestore(cmd *cobra.Command, args []string) error {
	return withDocuments(cmd.Context(), func(ctx context.Context, docs *services.DocumentService) error {
		snapshot, err := docs.Restore(ctx, args[0])
		if err != nil {
			return err
		}
		if snapshot != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Safety backup created at %s\n", snapshot)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Restored %s\n", args[0])
		return nil
	})
}

func runAudit(cmd *cobra.Command, args []string) error {
	return withDocuments(cmd.Context(), func(ctx context.Context, docs *services.DocumentService) error {
		report, err := services.NewIntegrityService(docs).Report(ctx)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
		if auditStrict && !report.OK {
			return errors.New("integrity check failed")
		}
		return nil
	})
}

func runHashPassword(cmd *cobra.Command, args []string) error {
	var password string
	if len(args) == 1 {
		password = args[0]
	} else {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if password == "" {
		return errors.New("password must not be empty")
	}

	hash, err := utils.Hash(password)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}
