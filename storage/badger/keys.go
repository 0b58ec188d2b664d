package badger

// Key prefixes for different data types
const (
	paperRecordPrefix = "paprec"
)

// makePaperKey generates a key for a paper record by PMID.
func makePaperKey(pmid string) []byte {
	return []byte(paperRecordPrefix + ":" + pmid)
}
