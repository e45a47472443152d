package models

import (
	"time"

	"github.com/yigit/placement/internal/pkg/deptset"
)

// Message is an announcement from the placement cell
type Message struct {
	ID          int64       `db:"id"`
	Content     string      `db:"content"`
	Departments deptset.Set `db:"departments"`
	CreatedAt   time.Time   `db:"created_at"`

	RawDepartments []byte `db:"-"`
}
