package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// TableColumns returns the lowercase column names of a table mapped to their lowercase types.
// A missing table yields an empty map on sqlite and an error on mysql.
func TableColumns(db *gorm.DB, table string) (map[string]string, error) {
	type column struct {
		Name string
		Type string
	}
	var columns []column

	var query string
	switch db.Dialector.Name() {
	case DriverSQLite:
		query = fmt.Sprintf("SELECT name, type FROM pragma_table_info('%s')", table)
	default:
		query = fmt.Sprintf("SELECT COLUMN_NAME AS name, COLUMN_TYPE AS type FROM information_schema.COLUMNS WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = '%s'", table)
	}
	if err := db.Raw(query).Scan(&columns).Error; err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", table, err)
	}

	out := make(map[string]string, len(columns))
	for _, c := range columns {
		out[strings.ToLower(c.Name)] = strings.ToLower(c.Type)
	}
	return out, nil
}

// MissingColumns returns the names in want that the table lacks.
func MissingColumns(db *gorm.DB, table string, want []string) ([]string, error) {
	have, err := TableColumns(db, table)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, name := range want {
		if _, ok := have[strings.ToLower(name)]; !ok {
			missing = append(missing, name)
		}
	}
	return missing, nil
}
