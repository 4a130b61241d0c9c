package dataset

import "fmt"

// TableName is the SQL table the vehicle listings are loaded into.
const TableName = "listings"

// CategoricalColumns is the fixed list of columns whose distinct value
// sets are exposed as prompt metadata.
var CategoricalColumns = []string{
	"Advertiser",
	"Brand",
	"Fuel",
	"Segment",
	"Color",
	"Gear_Type",
	"Condition",
	"Compared_Price",
}

// requiredColumns must all be present in the source file. Price is
// required on top of the categorical set because the query tool's
// aggregate answers and the price comparison bucket both refer to it.
var requiredColumns = append(append([]string{}, CategoricalColumns...), "Price")

// Metadata is the dataset-derived information the prompt template embeds
// so the model knows legal column names and filter values without
// querying first.
type Metadata struct {
	// Columns lists every column in source order.
	Columns []string

	// Categories maps each categorical column to its distinct values in
	// first-seen order.
	Categories map[string][]string

	// Rows is the number of listings loaded.
	Rows int
}

// LoadError reports a missing, malformed, or incomplete dataset source.
// It is fatal at startup: the collaborator constructing the dataset
// context must abort session creation.
type LoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("dataset load failed (%s): %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("dataset load failed (%s): %s", e.Path, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
