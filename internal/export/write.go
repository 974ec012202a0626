package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"adaptgrant/internal/store"
	"adaptgrant/pkg/types"
)

var ErrUnknownFormat = errors.New("unknown export format")

// Write renders rows in format.
func Write(w io.Writer, format string, rows []*Row, generatedAt time.Time) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, rows)
	case FormatJSON:
		return WriteJSON(w, rows)
	case FormatDOCX:
		return WriteDOCX(w, rows, generatedAt)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// FileName is the download name for an export generated at t.
func FileName(format string, t time.Time) string {
	return fmt.Sprintf("applications-%s.%s", t.UTC().Format("20060102-150405"), format)
}

// Load builds rows for every non-draft application, optionally narrowed to
// statuses.
func Load(ctx context.Context, st *store.Store, statuses ...types.ApplicationStatus) ([]*Row, error) {
	profiles, err := st.Applications.Profiles(ctx, store.ApplicationFilter{Statuses: statuses, NonDraft: len(statuses) == 0})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.Application.ID)
	}

	eligibility, err := st.Eligibility.EligibilityByApplications(ctx, ids)
	if err != nil {
		return nil, err
	}

	return BuildRows(profiles, eligibility), nil
}
