// Package sheets mirrors progress state to a Google Spreadsheet. The
// mirror is best-effort: every failure is logged and skipped, and the bot
// is fully functional with the mirror absent.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"levelbot/internal/config"
	"levelbot/internal/leveling"
)

// Sheet row layout: A=user id (text), B=username, C=level, D=xp,
// E=last update. One row per user id.
const (
	updateQueueSize = 256
	timestampLayout = "2006-01-02 15:04:05"
)

var errNoCredentials = errors.New("no google credentials found")

// Mirror replicates progress rows to one spreadsheet through a single
// background worker, so the XP path never waits on the Sheets API.
type Mirror struct {
	svc           *sheets.Service
	spreadsheetID string
	updates       chan leveling.MirrorUpdate
	logger        *zap.Logger
}

// New connects to the spreadsheet named by the configuration: by
// SpreadsheetID when set, otherwise located by SheetName through the
// Drive API.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Mirror, error) {
	creds, err := credentialOption(cfg)
	if err != nil {
		return nil, err
	}

	spreadsheetID := cfg.SpreadsheetID
	if spreadsheetID == "" {
		spreadsheetID, err = findSpreadsheetByName(ctx, cfg.SheetName, creds)
		if err != nil {
			return nil, fmt.Errorf("failed to locate spreadsheet %q: %w", cfg.SheetName, err)
		}
	}

	svc, err := sheets.NewService(ctx, creds, option.WithScopes(sheets.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Mirror{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		updates:       make(chan leveling.MirrorUpdate, updateQueueSize),
		logger:        logger,
	}, nil
}

func credentialOption(cfg *config.Config) (option.ClientOption, error) {
	paths := []string{cfg.GoogleCredsFile, "/etc/secrets/credentials.json", "credentials.json"}
	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return option.WithCredentialsFile(path), nil
		}
	}
	if cfg.GoogleCredsJSON != "" {
		return option.WithCredentialsJSON([]byte(cfg.GoogleCredsJSON)), nil
	}
	return nil, errNoCredentials
}

func findSpreadsheetByName(ctx context.Context, name string, creds option.ClientOption) (string, error) {
	svc, err := drive.NewService(ctx, creds, option.WithScopes(drive.DriveReadonlyScope))
	if err != nil {
		return "", fmt.Errorf("failed to create drive service: %w", err)
	}

	query := fmt.Sprintf(
		"name = '%s' and mimeType = 'application/vnd.google-apps.spreadsheet' and trashed = false",
		strings.ReplaceAll(name, "'", "\\'"))
	list, err := svc.Files.List().Q(query).PageSize(1).Fields("files(id)").Context(ctx).Do()
	if err != nil {
		return "", err
	}
	if len(list.Files) == 0 {
		return "", fmt.Errorf("no spreadsheet named %q", name)
	}
	return list.Files[0].Id, nil
}

// Enqueue hands an update to the background worker without blocking. A
// full queue drops the update; the row is rewritten on the user's next
// activity.
func (m *Mirror) Enqueue(update leveling.MirrorUpdate) {
	select {
	case m.updates <- update:
	default:
		m.logger.Warn("mirror queue full, dropping update",
			zap.String("user_id", update.UserID))
	}
}

// Run consumes queued updates until ctx is cancelled. Intended to run on
// its own goroutine.
func (m *Mirror) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case update := <-m.updates:
			if err := m.upsert(ctx, update); err != nil {
				m.logger.Warn("mirror upsert failed",
					zap.String("user_id", update.UserID),
					zap.String("username", update.Username),
					zap.Error(err))
			}
		}
	}
}

// upsert writes one row per user id: an update in place when the id is
// already present in column A, an append otherwise.
func (m *Mirror) upsert(ctx context.Context, update leveling.MirrorUpdate) error {
	// Leading apostrophe forces Sheets to keep the id as text; Discord
	// snowflakes overflow the sheet's numeric precision.
	row := []interface{}{
		"'" + update.UserID,
		update.Username,
		update.Level,
		update.XP,
		time.Now().Format(timestampLayout),
	}
	body := &sheets.ValueRange{Values: [][]interface{}{row}}

	rowIndex, err := m.findRowByUserID(ctx, update.UserID)
	if err != nil {
		return err
	}

	if rowIndex > 0 {
		_, err = m.svc.Spreadsheets.Values.
			Update(m.spreadsheetID, fmt.Sprintf("A%d:E%d", rowIndex, rowIndex), body).
			ValueInputOption("USER_ENTERED").
			Context(ctx).Do()
		return err
	}

	_, err = m.svc.Spreadsheets.Values.
		Append(m.spreadsheetID, "A:E", body).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	return err
}

// findRowByUserID returns the 1-based row whose first cell matches the
// user id, or 0 when absent.
func (m *Mirror) findRowByUserID(ctx context.Context, userID string) (int, error) {
	resp, err := m.svc.Spreadsheets.Values.
		Get(m.spreadsheetID, "A:A").
		Context(ctx).Do()
	if err != nil {
		return 0, err
	}

	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if normalizeIDCell(cellString(row[0])) == userID {
			return i + 1, nil
		}
	}
	return 0, nil
}

// ProgressRow is one valid user row read back from the sheet.
type ProgressRow struct {
	UserID   string
	Username string
	Level    int
	XP       int
}

// Bootstrap reads every row of the sheet and returns the parseable ones.
// A header row and rows with a non-numeric id are skipped; a malformed
// level or xp cell degrades to 0 rather than discarding the row.
func (m *Mirror) Bootstrap(ctx context.Context) ([]ProgressRow, error) {
	resp, err := m.svc.Spreadsheets.Values.
		Get(m.spreadsheetID, "A:E").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}

	var rows []ProgressRow
	for _, raw := range resp.Values {
		cells := make([]string, len(raw))
		for i, c := range raw {
			cells[i] = cellString(c)
		}
		if row, ok := parseProgressRow(cells); ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// parseProgressRow converts one sheet row into a ProgressRow. Rows that
// are too short or whose id is not all digits are rejected (this also
// rejects the header row).
func parseProgressRow(cells []string) (ProgressRow, bool) {
	if len(cells) < 4 {
		return ProgressRow{}, false
	}

	id := normalizeIDCell(cells[0])
	if id == "" || !isDigits(id) {
		return ProgressRow{}, false
	}

	row := ProgressRow{UserID: id, Username: cells[1]}
	if n, err := strconv.Atoi(strings.TrimSpace(cells[2])); err == nil {
		row.Level = n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(cells[3])); err == nil {
		row.XP = n
	}
	return row, true
}

// normalizeIDCell strips the text-forcing apostrophe and whitespace from
// an id cell.
func normalizeIDCell(val string) string {
	return strings.TrimSpace(strings.ReplaceAll(val, "'", ""))
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

func cellString(v interface{}) string {
	s, _ := v.(string)
	return s
}
