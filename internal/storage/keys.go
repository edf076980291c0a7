package storage

import (
	"fmt"

	"github.com/kacper-wojtaszczyk/terra-sense/imagery-go/internal/model"
)

// ObjectKey addresses one fetch record: <provider>/<date>/<run-id>.<ext>.
type ObjectKey struct {
	Provider  model.Provider
	Date      string // in YYYY-MM-DD format
	RunID     model.RunID
	Extension string
}

func (k ObjectKey) Key() string {
	return fmt.Sprintf("%s/%s/%s.%s", k.Provider, k.Date, k.RunID, k.Extension)
}
