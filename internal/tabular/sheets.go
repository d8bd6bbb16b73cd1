package tabular

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsStore implements Store over the Google Sheets API; the store id is
// the spreadsheet id. Reads use FORMATTED_VALUE so values arrive as displayed,
// writes use RAW so nothing is re-parsed as a formula on the way in.
type SheetsStore struct {
	svc *sheets.Service
}

// NewSheetsStore builds the API client. Credentials come from GCP_SA_JSON
// (the full service-account JSON, as deployed) or, failing that, from
// GOOGLE_APPLICATION_CREDENTIALS / application default credentials.
func NewSheetsStore(ctx context.Context) (*SheetsStore, error) {
	var opts []option.ClientOption
	if saJSON := os.Getenv("GCP_SA_JSON"); saJSON != "" {
		creds, err := google.CredentialsFromJSON(ctx, []byte(saJSON), sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("parse GCP_SA_JSON: %w", err)
		}
		opts = append(opts, option.WithCredentials(creds))
	} else if path := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); path != "" {
		opts = append(opts, option.WithCredentialsFile(path), option.WithScopes(sheets.SpreadsheetsScope))
	} else {
		opts = append(opts, option.WithScopes(sheets.SpreadsheetsScope))
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("build sheets client: %w", err)
	}
	return &SheetsStore{svc: svc}, nil
}

func (s *SheetsStore) GetValues(ctx context.Context, storeID, rangeSpec string) ([][]string, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(storeID, rangeSpec).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).Do()
	if err != nil {
		return nil, classify(fmt.Errorf("get %s!%s: %w", storeID, rangeSpec, err))
	}

	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, v := range row {
			if v != nil {
				cells[j] = fmt.Sprint(v)
			}
		}
		rows[i] = cells
	}
	return rows, nil
}

func (s *SheetsStore) UpdateValues(ctx context.Context, storeID, rangeSpec string, values [][]any) error {
	body := &sheets.ValueRange{Values: values}
	_, err := s.svc.Spreadsheets.Values.Update(storeID, rangeSpec, body).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return classify(fmt.Errorf("update %s!%s: %w", storeID, rangeSpec, err))
	}
	return nil
}

func (s *SheetsStore) ClearRange(ctx context.Context, storeID, rangeSpec string) error {
	if _, cells := SplitRange(rangeSpec); cells == "" {
		return fmt.Errorf("refusing whole-sheet clear of %s", rangeSpec)
	}
	_, err := s.svc.Spreadsheets.Values.Clear(storeID, rangeSpec, &sheets.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return classify(fmt.Errorf("clear %s!%s: %w", storeID, rangeSpec, err))
	}
	return nil
}

func (s *SheetsStore) ListSheetTitles(ctx context.Context, storeID string) ([]string, error) {
	meta, err := s.svc.Spreadsheets.Get(storeID).
		Fields("sheets.properties.title").
		Context(ctx).Do()
	if err != nil {
		return nil, classify(fmt.Errorf("get metadata %s: %w", storeID, err))
	}

	titles := make([]string, 0, len(meta.Sheets))
	for _, sh := range meta.Sheets {
		if sh.Properties != nil {
			titles = append(titles, sh.Properties.Title)
		}
	}
	return titles, nil
}

func (s *SheetsStore) EnsureSheetExists(ctx context.Context, storeID, title string) (string, error) {
	titles, err := s.ListSheetTitles(ctx, storeID)
	if err != nil {
		return "", err
	}
	for _, t := range titles {
		if strings.EqualFold(t, title) {
			return t, nil
		}
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: title},
			},
		}},
	}
	if _, err := s.svc.Spreadsheets.BatchUpdate(storeID, req).Context(ctx).Do(); err != nil {
		// Another writer may have created the sheet between list and create.
		titles, listErr := s.ListSheetTitles(ctx, storeID)
		if listErr == nil {
			for _, t := range titles {
				if strings.EqualFold(t, title) {
					return t, nil
				}
			}
		}
		return "", classify(fmt.Errorf("create sheet %s: %w", title, err))
	}
	return title, nil
}

// classify marks rate-limit and server-error responses as retryable.
func classify(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500 {
			return &RetryableError{Err: err}
		}
	}
	return err
}
