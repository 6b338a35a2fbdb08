package google

import (
	"strconv"
	"strings"

	"caixa/internal/core"
)

// Client registry columns, in canonical tab order.
const (
	colClientID           = "id"
	colClientName         = "name"
	colClientPhone        = "phone"
	colClientEmail        = "email"
	colClientBirthDate    = "birth_date"
	colClientCity         = "city"
	colClientDistrict     = "district"
	colClientRegisteredAt = "registered_at"
	colClientProfession   = "profession"
	colClientPreferences  = "preferences"
	colClientSource       = "source"
	colClientNotes        = "notes"
)

// Category registry columns.
const (
	colCategoryKind   = "kind"
	colCategoryName   = "category"
	colCategoryActive = "active"
)

// parseEntries turns a raw value matrix (header row first) into typed
// entries. Malformed cells are normalized leniently by the row seam;
// completely empty rows are skipped.
func parseEntries(values [][]interface{}) []core.LedgerEntry {
	if len(values) < 2 {
		return nil
	}
	idx := headerIndex(values[0])

	entries := make([]core.LedgerEntry, 0, len(values)-1)
	for i, raw := range values[1:] {
		row := rowMap(idx, raw)
		if emptyRow(row) {
			continue
		}
		entries = append(entries, core.EntryFromRow(rowRef(i+2), row))
	}
	return entries
}

func parseClients(values [][]interface{}) []core.Client {
	if len(values) < 2 {
		return nil
	}
	idx := headerIndex(values[0])

	clients := make([]core.Client, 0, len(values)-1)
	for _, raw := range values[1:] {
		row := rowMap(idx, raw)
		if emptyRow(row) {
			continue
		}
		clients = append(clients, core.Client{
			ID:           row[colClientID],
			Name:         row[colClientName],
			Phone:        row[colClientPhone],
			Email:        row[colClientEmail],
			BirthDate:    row[colClientBirthDate],
			City:         row[colClientCity],
			District:     row[colClientDistrict],
			RegisteredAt: row[colClientRegisteredAt],
			Profession:   row[colClientProfession],
			Preferences:  row[colClientPreferences],
			Source:       row[colClientSource],
			Notes:        row[colClientNotes],
		})
	}
	return clients
}

func parseCategories(values [][]interface{}) []core.Category {
	if len(values) < 2 {
		return nil
	}
	idx := headerIndex(values[0])

	cats := make([]core.Category, 0, len(values)-1)
	for _, raw := range values[1:] {
		row := rowMap(idx, raw)
		if strings.TrimSpace(row[colCategoryName]) == "" {
			continue
		}
		cats = append(cats, core.Category{
			Kind:   core.Kind(strings.ToLower(strings.TrimSpace(row[colCategoryKind]))),
			Name:   strings.TrimSpace(row[colCategoryName]),
			Active: parseBoolCell(row[colCategoryActive]),
		})
	}
	return cats
}

func clientToRow(c core.Client) map[string]string {
	return map[string]string{
		colClientID:           c.ID,
		colClientName:         c.Name,
		colClientPhone:        c.Phone,
		colClientEmail:        c.Email,
		colClientBirthDate:    c.BirthDate,
		colClientCity:         c.City,
		colClientDistrict:     c.District,
		colClientRegisteredAt: c.RegisteredAt,
		colClientProfession:   c.Profession,
		colClientPreferences:  c.Preferences,
		colClientSource:       c.Source,
		colClientNotes:        c.Notes,
	}
}

// headerIndex maps normalized header titles to their column position.
func headerIndex(header []interface{}) map[string]int {
	idx := make(map[string]int, len(header))
	for i, cell := range header {
		name := strings.ToLower(strings.TrimSpace(cellString(cell)))
		if name != "" {
			idx[name] = i
		}
	}
	return idx
}

func rowMap(idx map[string]int, raw []interface{}) map[string]string {
	row := make(map[string]string, len(idx))
	for name, i := range idx {
		if i < len(raw) {
			row[name] = cellString(raw[i])
		}
	}
	return row
}

func emptyRow(row map[string]string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func rowValues(header []string, row map[string]string) []interface{} {
	out := make([]interface{}, len(header))
	for i, name := range header {
		out[i] = row[strings.ToLower(strings.TrimSpace(name))]
	}
	return out
}

func toStrings(cells []interface{}) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = cellString(c)
	}
	return out
}

// cellString renders a sheet cell. Unformatted reads hand back numbers
// as float64 and checkboxes as bool.
func cellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return ""
	}
}

func parseBoolCell(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "sim", "x":
		return true
	}
	return false
}
