package events

const ImportCompletedTopic = "import:completed"

// ImportedItem carries just enough of a newly created record for
// downstream consumers (the translation pipeline) to act on it.
type ImportedItem struct {
	ContentID   string
	ContentType string
	Title       string
}

type ImportCompleted struct {
	RunID   string
	Source  string
	Kind    string
	Created int
	Updated int
	Items   []ImportedItem
}
