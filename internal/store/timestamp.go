package store

import (
	"fmt"
	"time"
)

// timestampLayouts はSQLiteがテキストで返す日時の書式。
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
}

// timestamp はドライバごとに異なる日時の表現を吸収するsql.Scanner。
// pgxはtime.Timeを返すが、SQLiteはRETURNING句などでテキストを返すことがある。
type timestamp struct {
	time.Time
}

// Scan はsql.Scannerを実装する。
func (ts *timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		ts.Time = time.Time{}
		return nil
	case time.Time:
		ts.Time = v.UTC()
		return nil
	case string:
		return ts.parse(v)
	case []byte:
		return ts.parse(string(v))
	default:
		return fmt.Errorf("日時として解釈できない型です: %T", src)
	}
}

func (ts *timestamp) parse(s string) error {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			ts.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("日時の解析に失敗: %q", s)
}
