// Package sheets implements the Store on a Google spreadsheet with one
// sheet per collection and a header row naming the fields.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/config"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/domain"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/ingest"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2/google"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

const defaultConcurrency = 3

type Store struct {
	srv           *gsheets.Service
	spreadsheetID string
	dec           *ingest.Decoder
	concurrency   int

	// writes that locate a row by id must not interleave
	mu sync.Mutex
}

var _ repository.Store = (*Store)(nil)

// NewStore authenticates with a service account and opens the spreadsheet.
func NewStore(ctx context.Context, cfg config.SheetsConfig, loc *time.Location) (*Store, error) {
	creds := []byte(cfg.CredentialsJSON)
	if len(creds) == 0 && cfg.CredentialsFile != "" {
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("unable to read sheets credentials: %w", err)
		}
		creds = b
	}
	if len(creds) == 0 {
		return nil, errors.New("sheets credentials are not configured")
	}

	jwt, err := google.JWTConfigFromJSON(creds, gsheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse sheets credentials: %w", err)
	}

	return NewStoreWithClient(ctx, jwt.Client(ctx), cfg.SpreadsheetID, cfg.FetchConcurrency, loc)
}

// NewStoreWithClient opens the spreadsheet over an already authorized client.
// Extra options, such as a custom endpoint, are passed to the API client.
func NewStoreWithClient(ctx context.Context, client *http.Client, spreadsheetID string, concurrency int, loc *time.Location, opts ...option.ClientOption) (*Store, error) {
	if spreadsheetID == "" {
		return nil, errors.New("spreadsheet id is required")
	}
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	opts = append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)
	srv, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets client: %w", err)
	}

	return &Store{
		srv:           srv,
		spreadsheetID: spreadsheetID,
		dec:           ingest.NewDecoder(loc),
		concurrency:   concurrency,
	}, nil
}

// Snapshot reads every sheet concurrently and decodes the rows.
func (s *Store) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	tables := make([][]ingest.Row, len(repository.Sheets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, name := range repository.Sheets {
		g.Go(func() error {
			rows, err := s.readSheet(gctx, name)
			if err != nil {
				return err
			}
			tables[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.Snapshot{}, err
	}

	raw := make(map[string]any, len(tables))
	for i, name := range repository.Sheets {
		raw[name] = tables[i]
	}
	return s.dec.Snapshot(raw), nil
}

func (s *Store) readSheet(ctx context.Context, name string) ([]ingest.Row, error) {
	vr, err := s.srv.Spreadsheets.Values.Get(s.spreadsheetID, name).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).
		Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusBadRequest {
			log.Warn().Str("sheet", name).Err(err).Msg("sheet missing, reading as empty")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read sheet %s: %w", name, err)
	}
	return tableRows(vr.Values), nil
}

// tableRows keys every data row by the trimmed header row. Columns with an
// empty header are dropped.
func tableRows(values [][]any) []ingest.Row {
	if len(values) < 2 {
		return nil
	}
	headers := make([]string, len(values[0]))
	for i, h := range values[0] {
		headers[i] = strings.TrimSpace(ingest.String(h))
	}

	rows := make([]ingest.Row, 0, len(values)-1)
	for _, cells := range values[1:] {
		row := make(ingest.Row, len(headers))
		for i, h := range headers {
			if h == "" || i >= len(cells) {
				continue
			}
			row[h] = cells[i]
		}
		rows = append(rows, row)
	}
	return rows
}

func (s *Store) SyncRawMaterials(ctx context.Context, materials []domain.RawMaterial) error {
	rows := make([][]any, 0, len(materials))
	for _, m := range materials {
		rows = append(rows, repository.RawMaterialRow(m))
	}
	return s.replace(ctx, repository.SheetRawMaterials, rows)
}

func (s *Store) SyncFinishGoods(ctx context.Context, goods []domain.FinishGood) error {
	rows := make([][]any, 0, len(goods))
	for _, g := range goods {
		rows = append(rows, repository.FinishGoodRow(g))
	}
	return s.replace(ctx, repository.SheetFinishGoods, rows)
}

func (s *Store) SyncSales(ctx context.Context, sales []domain.SalesRecord) error {
	rows := make([][]any, 0, len(sales))
	for _, r := range sales {
		rows = append(rows, repository.SalesRow(r))
	}
	return s.replace(ctx, repository.SheetSales, rows)
}

// replace clears a sheet and rewrites the header and rows.
func (s *Store) replace(ctx context.Context, sheet string, rows [][]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.srv.Spreadsheets.Values.Clear(s.spreadsheetID, sheet, &gsheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to clear sheet %s: %w", sheet, err)
	}

	header := make([]any, 0, len(repository.Columns[sheet]))
	for _, c := range repository.Columns[sheet] {
		header = append(header, c)
	}
	values := append([][]any{header}, rows...)

	_, err := s.srv.Spreadsheets.Values.Update(s.spreadsheetID, sheet+"!A1", &gsheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to write sheet %s: %w", sheet, err)
	}
	return nil
}

func (s *Store) append(ctx context.Context, sheet string, row []any) error {
	_, err := s.srv.Spreadsheets.Values.Append(s.spreadsheetID, sheet, &gsheets.ValueRange{Values: [][]any{row}}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append to sheet %s: %w", sheet, err)
	}
	return nil
}

func (s *Store) SaveSchedule(ctx context.Context, sched domain.SavedSchedule) (string, error) {
	if sched.ID == "" {
		sched.ID = uuid.NewString()
	}
	if err := s.append(ctx, repository.SheetProductionHistory, repository.ScheduleRow(sched)); err != nil {
		return "", err
	}
	return sched.ID, nil
}

func (s *Store) UpdateSchedule(ctx context.Context, sched domain.SavedSchedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rowNum, err := s.findRow(ctx, repository.SheetProductionHistory, sched.ID)
	if err != nil {
		return err
	}
	rng := fmt.Sprintf("%s!A%d", repository.SheetProductionHistory, rowNum)
	return s.update(ctx, rng, repository.ScheduleRow(sched))
}

func (s *Store) SaveRMRequirement(ctx context.Context, r domain.SavedRMRequirement) (string, error) {
	r.ID = uuid.NewString()
	if err := s.append(ctx, repository.SheetRMHistory, repository.RMRequirementRow(r)); err != nil {
		return "", err
	}
	return r.ID, nil
}

func (s *Store) CreateRequestOrder(ctx context.Context, o domain.RequestOrder) error {
	return s.append(ctx, repository.SheetRequestOrders, repository.RequestOrderRow(o))
}

// UpdateRequestOrder rewrites the items, status and deadline cells.
func (s *Store) UpdateRequestOrder(ctx context.Context, o domain.RequestOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rowNum, err := s.findRow(ctx, repository.SheetRequestOrders, o.ID)
	if err != nil {
		return err
	}
	full := repository.RequestOrderRow(o)
	rng := fmt.Sprintf("%s!C%d:E%d", repository.SheetRequestOrders, rowNum, rowNum)
	return s.update(ctx, rng, full[2:5])
}

func (s *Store) update(ctx context.Context, rng string, row []any) error {
	_, err := s.srv.Spreadsheets.Values.Update(s.spreadsheetID, rng, &gsheets.ValueRange{Values: [][]any{row}}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", rng, err)
	}
	return nil
}

// findRow returns the 1-based sheet row holding id in column A.
func (s *Store) findRow(ctx context.Context, sheet, id string) (int, error) {
	vr, err := s.srv.Spreadsheets.Values.Get(s.spreadsheetID, sheet+"!A:A").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to read ids of %s: %w", sheet, err)
	}
	for i, cells := range vr.Values {
		if i == 0 || len(cells) == 0 {
			continue
		}
		if ingest.String(cells[0]) == id {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("%s %s: %w", sheet, id, repository.ErrNotFound)
}
