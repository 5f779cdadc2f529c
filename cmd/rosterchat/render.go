package main

import (
	"fmt"
	"io"
	"rosterhub/domain/chat"
	"rosterhub/projection"
	"time"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

type printer struct {
	out     io.Writer
	colours bool
	loc     *time.Location
}

func (p printer) paint(c color.Color, s string) string {
	if !p.colours {
		return s
	}
	return c.Render(s)
}

func (p printer) info(format string, args ...any) {
	fmt.Fprintln(p.out, p.paint(color.FgCyan, fmt.Sprintf(format, args...)))
}

func (p printer) fail(err error) {
	fmt.Fprintln(p.out, p.paint(color.FgRed, "error: "+err.Error()))
}

// thread prints one conversation with a separator on every local day change.
func (p printer) thread(entries []projection.Entry) {
	if len(entries) == 0 {
		p.info("no messages")
		return
	}
	for _, e := range entries {
		if e.ShowDateSeparator {
			header := fmt.Sprintf("  ====== %s ======", e.Chat.CreatedAt.In(p.loc).Format("Mon 02 Jan 2006"))
			fmt.Fprintln(p.out, p.paint(color.FgGray, header))
		}
		fmt.Fprintln(p.out, p.line(e))
	}
}

func (p printer) line(e projection.Entry) string {
	at := e.Chat.CreatedAt.In(p.loc).Format("15:04")
	if !e.Outbound {
		return fmt.Sprintf("%s %s: %s", at, p.paint(color.FgYellow, nameOf(e.Chat.From)), e.Chat.Content)
	}
	status := "sent"
	switch {
	case e.Pending:
		status = "sending"
	case e.Chat.Seen:
		status = "seen"
	}
	return fmt.Sprintf("%s %s: %s %s", at, p.paint(color.FgGreen, "me"), e.Chat.Content, p.paint(color.FgGray, "("+status+")"))
}

func (p printer) created(c chat.Chat) {
	fmt.Fprintf(p.out, "%s %s\n", p.paint(color.FgMagenta, "new from "+nameOf(c.From)+":"), c.Content)
}

func (p printer) seen(receipt chat.Chat) {
	p.info("%s saw your messages up to %s", nameOf(receipt.From), receipt.CreatedAt.In(p.loc).Format("15:04"))
}

func (p printer) peers(a *projection.Assembler) {
	table := p.table([]string{"Peer", "Unseen", "Last"})
	for _, peer := range a.Peers() {
		thread := a.Thread(peer)
		last := ""
		if len(thread) > 0 {
			last = thread[len(thread)-1].Chat.Content
		}
		table.Append([]string{peer, fmt.Sprintf("%d", a.Unseen(peer)), last})
	}
	table.Render()
}

func (p printer) results(chats []chat.Chat) {
	table := p.table([]string{"When", "From", "To", "Content"})
	for _, c := range chats {
		table.Append([]string{c.CreatedAt.In(p.loc).Format(time.DateTime), nameOf(c.From), nameOf(c.To), c.Content})
	}
	table.Render()
}

func (p printer) table(header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(p.out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetColumnSeparator("")
	table.SetCenterSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	return table
}

func nameOf(p chat.ProfileSummary) string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}
