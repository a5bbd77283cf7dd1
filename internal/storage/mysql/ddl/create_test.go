package ddl

import (
	"testing"

	"casmidb/pkg/column"
	"casmidb/pkg/sqlgen"
)

func TestQuoteIdent(t *testing.T) {
	t.Parallel()

	tests := []struct{ in, want string }{
		{in: "name", want: "`name`"},
		{in: "we`ird", want: "`we``ird`"},
	}
	for _, tt := range tests {
		if got := quoteIdent(tt.in); got != tt.want {
			t.Fatalf("quoteIdent(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDialectCreateTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		auto bool
		want string
	}{
		{
			name: "explicit string key",
			want: "CREATE TABLE IF NOT EXISTS `alcohol_table` (\n  `name` VARCHAR(255) NOT NULL,\n  `bottled` DATETIME(6),\n  PRIMARY KEY (`name`)\n)",
		},
		{
			name: "auto key",
			auto: true,
			want: "CREATE TABLE IF NOT EXISTS `alcohol_table` (\n  `name` INT NOT NULL AUTO_INCREMENT PRIMARY KEY,\n  `bottled` DATETIME(6)\n)",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pk, _ := column.New("name", "", column.String, column.Null())
			bottled, _ := column.New("bottled", "", column.Timestamp, column.Null())
			got, err := Dialect{}.CreateTable(sqlgen.Table{
				Name:           "alcohol_table",
				PrimaryKey:     pk,
				AutoPrimaryKey: tt.auto,
				Columns:        []column.Column{bottled},
			})
			if err != nil {
				t.Fatalf("CreateTable() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("CreateTable() =\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestMapTypeBlobAndFloats(t *testing.T) {
	t.Parallel()

	if got := MapType(column.Blob, false); got != "LONGBLOB" {
		t.Fatalf("MapType(blob) = %q", got)
	}
	if got := MapType(column.Float32, false); got != "FLOAT" {
		t.Fatalf("MapType(float32) = %q", got)
	}
	if got := MapType(column.Float64, false); got != "DOUBLE" {
		t.Fatalf("MapType(float64) = %q", got)
	}
}
