package sdk

import (
	"time"

	"go.uber.org/zap"

	"github.com/faciam-dev/gcform/internal/events"
)

// ServiceConfig holds the configuration for Service.
//
// SchemaPath and RecordPath name the two state documents. They are created
// on the first mutation.
type ServiceConfig struct {
	SchemaPath string
	RecordPath string
	// ColumnsPerRow is the layout width used when a caller passes 0.
	ColumnsPerRow int

	Logger *zap.SugaredLogger
	// Events receives change notifications. Nil disables external delivery.
	Events *events.Dispatcher
	// Now overrides the clock for record timestamps and date defaults.
	Now func() time.Time
}
