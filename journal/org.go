package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatTransactionOrg renders a TransactionRecord as an Org-mode block. All
// structured facts go into the PROPERTIES drawer for easy search.
func FormatTransactionOrg(t TransactionRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "** %s: %s (%s)\n", kind(t), t.Status, shortID(t.TransactionID))
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":TRANSACTION_ID: %s\n", t.TransactionID)
	if t.SenderID != "" {
		fmt.Fprintf(&b, ":SENDER_ID: %s\n", t.SenderID)
		fmt.Fprintf(&b, ":AMOUNT_SENT: %s %s\n", t.AmountSent.Decimal.String(), t.CurrencySent)
	}
	if t.ReceiverID != "" {
		fmt.Fprintf(&b, ":RECEIVER_ID: %s\n", t.ReceiverID)
		fmt.Fprintf(&b, ":AMOUNT_RECEIVED: %s %s\n", t.AmountReceived.Decimal.String(), t.CurrencyReceived)
	}
	fmt.Fprintf(&b, ":STATUS: %s\n", t.Status)
	fmt.Fprintf(&b, ":CREATED: %s\n", t.Created.UTC().Format(time.RFC3339))
	if !t.Processed.IsZero() {
		fmt.Fprintf(&b, ":PROCESSED: %s\n", t.Processed.UTC().Format(time.RFC3339))
	}
	b.WriteString(":END:\n")

	return b.String()
}

// FormatTransactionsOrg renders multiple transactions separated by blank lines.
func FormatTransactionsOrg(recs []TransactionRecord) string {
	var b strings.Builder
	for i, t := range recs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatTransactionOrg(t))
	}
	return b.String()
}

func kind(t TransactionRecord) string {
	switch {
	case t.SenderID == "":
		return "Deposit"
	case t.ReceiverID == "":
		return "Withdrawal"
	default:
		return "Transfer"
	}
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
