package console

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"usmbot/internal/domain/model"
)

// HistoryWriter 以表格输出交易记录
type HistoryWriter struct {
	w *tabwriter.Writer
}

func NewHistoryWriter(out io.Writer) *HistoryWriter {
	return &HistoryWriter{w: tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)}
}

func (h *HistoryWriter) Write(list []*model.Engagement) error {
	fmt.Fprintln(h.w, "STARTED\tACCOUNT\tOUTCOME\tHELD\tBUY\tSELL\tQTY\tPRICE\tREASON")
	for _, e := range list {
		fmt.Fprintf(h.w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.StartedAt.Local().Format("2006-01-02 15:04:05"),
			e.Account,
			e.Outcome,
			formatQty(e.HeldQuantity),
			dash(e.BuyOrderID),
			dash(e.SellOrderID),
			formatQty(e.SellQuantity),
			dash(e.SellPrice),
			dash(e.Reason),
		)
	}
	if len(list) == 0 {
		fmt.Fprintln(h.w, "(no engagements)")
	}
	return h.w.Flush()
}

// Summary 每种结果的次数，按固定顺序
func Summary(list []*model.Engagement, since time.Time) string {
	counts := map[model.Outcome]int{}
	for _, e := range list {
		counts[e.Outcome]++
	}
	s := fmt.Sprintf("%d engagements", len(list))
	if !since.IsZero() {
		s += " since " + since.Local().Format("2006-01-02 15:04")
	}
	for _, o := range model.Outcomes {
		if n := counts[o]; n > 0 {
			s += fmt.Sprintf(", %s=%d", o, n)
		}
	}
	return s
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatQty(q float64) string {
	if q == 0 {
		return "-"
	}
	return fmt.Sprintf("%.8g", q)
}
