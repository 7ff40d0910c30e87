package billing

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// Fingerprint computes the tamper-evident hash of a document at certification
// time. It is a deterministic function of the frozen fields (issue date, total,
// customer) chained on the fingerprint of the previously certified document of
// the same series and type, so any later alteration of a sealed document breaks
// the chain.
func Fingerprint(d *FiscalDocument, priorHash string) string {
	payload := fmt.Sprintf("%s;%s;%s;%s;%s",
		d.IssueDate.Format("2006-01-02"),
		d.Total.StringFixed(2),
		d.Customer.CustomerID.String(),
		d.Customer.TaxID,
		priorHash,
	)
	sum := sha256.Sum256([]byte(payload))
	return base64.StdEncoding.EncodeToString(sum[:])
}
