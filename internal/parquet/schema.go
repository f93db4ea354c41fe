package parquet

import "github.com/turbolytics/kevetl/internal/kev"

func utf8(name string) Field {
	return Field{Name: name, Type: "BYTE_ARRAY", ConvertedType: "UTF8", RepetitionType: "OPTIONAL"}
}

// KEVSchema is the archive layout of a transformed catalog entry. cwes is
// flattened to a comma separated string.
var KEVSchema = Schema{
	utf8(kev.FieldCVEID),
	utf8("vendorProject"),
	utf8("product"),
	utf8("vulnerabilityName"),
	{Name: kev.FieldDateAdded, Type: "INT32", ConvertedType: "DATE", RepetitionType: "OPTIONAL"},
	utf8("shortDescription"),
	utf8("requiredAction"),
	{Name: kev.FieldDueDate, Type: "INT32", ConvertedType: "DATE", RepetitionType: "OPTIONAL"},
	utf8(kev.FieldKnownRansomwareCampaignUse),
	utf8("notes"),
	utf8("cwes"),
	{Name: kev.FieldIngestionTimestamp, Type: "INT64", ConvertedType: "TIMESTAMP_MILLIS", RepetitionType: "REQUIRED"},
	{Name: kev.FieldDaysToPatch, Type: "INT32", RepetitionType: "OPTIONAL"},
	{Name: kev.FieldIsRansomwareAssociated, Type: "BOOLEAN", RepetitionType: "REQUIRED"},
}
