package sheet

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"time"

	"house_admin/internal/domain"
	"house_admin/internal/model"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetService writes the house roster to one tab of a spreadsheet.
type SheetService struct {
	SpreadsheetID string
	SheetID       string
	SheetName     string
	PauseMs       int // pause between API calls
	srv           *sheets.Service
	limiterMu     sync.Mutex
	lastCall      time.Time
	columns       []string
}

// DefaultColumns is the roster column order used when none is configured.
var DefaultColumns = []string{"House", "Email", "Expiration", "Active", "Note"}

// ColumnsFromOrder parses a comma separated column order such as
// "House,Email,Expiration". Unknown names are kept and exported empty.
func ColumnsFromOrder(order string) []string {
	if strings.TrimSpace(order) == "" {
		return DefaultColumns
	}
	fields := strings.Split(order, ",")
	cols := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			cols = append(cols, f)
		}
	}
	return cols
}

func NewSheetService(ctx context.Context, base64Creds, spreadsheetID, sheetID string, pauseMs int, columns []string) (*SheetService, error) {
	credBytes, err := base64.StdEncoding.DecodeString(base64Creds)
	if err != nil {
		return nil, fmt.Errorf("decode base64 credentials: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, credBytes, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials JSON: %w", err)
	}
	srv, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("init google sheets service: %w", err)
	}
	if len(columns) == 0 {
		columns = DefaultColumns
	}

	s := &SheetService{
		SpreadsheetID: spreadsheetID,
		SheetID:       sheetID,
		PauseMs:       pauseMs,
		srv:           srv,
		lastCall:      time.Now(),
		columns:       columns,
	}
	if err := s.fetchSheetName(ctx); err != nil {
		return nil, fmt.Errorf("resolve sheet name: %w", err)
	}
	return s, nil
}

func (s *SheetService) fetchSheetName(ctx context.Context) error {
	s.Wait()

	resp, err := s.srv.Spreadsheets.Get(s.SpreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}
	for _, sh := range resp.Sheets {
		if fmt.Sprint(sh.Properties.SheetId) == s.SheetID {
			s.SheetName = sh.Properties.Title
			return nil
		}
	}
	return fmt.Errorf("sheet with ID %s not found", s.SheetID)
}

// Wait paces API calls so that consecutive requests are at least PauseMs apart.
func (s *SheetService) Wait() {
	s.limiterMu.Lock()
	defer s.limiterMu.Unlock()
	elapsed := time.Since(s.lastCall)
	pause := time.Duration(s.PauseMs) * time.Millisecond
	if elapsed < pause {
		time.Sleep(pause - elapsed)
	}
	s.lastCall = time.Now()
}

// ExportRoster replaces the tab contents with a header row and one row per seat.
func (s *SheetService) ExportRoster(ctx context.Context, rows []domain.RosterRow) error {
	s.Wait()
	if _, err := s.srv.Spreadsheets.Values.Clear(s.SpreadsheetID, s.SheetName, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear roster sheet: %w", err)
	}

	s.Wait()
	vr := &sheets.ValueRange{Values: RosterValues(s.columns, rows)}
	rangeStr := fmt.Sprintf("%s!A1", s.SheetName)
	if _, err := s.srv.Spreadsheets.Values.Update(s.SpreadsheetID, rangeStr, vr).ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write roster sheet: %w", err)
	}
	return nil
}

// RosterValues lays rows out in the given column order, header first.
func RosterValues(columns []string, rows []domain.RosterRow) [][]interface{} {
	values := make([][]interface{}, 0, len(rows)+1)
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	values = append(values, header)

	for _, r := range rows {
		line := make([]interface{}, len(columns))
		for i, c := range columns {
			switch c {
			case "House":
				line[i] = r.HouseNumber
			case "Email":
				line[i] = r.MemberEmail
			case "Expiration":
				line[i] = model.FormatDate(r.ExpirationDate)
			case "Active":
				line[i] = r.IsActive
			case "Note":
				line[i] = r.Note
			default:
				line[i] = ""
			}
		}
		values = append(values, line)
	}
	return values
}
