package main

import (
	"boardroom/domain/event"
	"fmt"
	"io"

	"github.com/gookit/color"
)

var agentStyles = []color.Style{
	color.New(color.FgCyan, color.OpBold),
	color.New(color.FgGreen, color.OpBold),
	color.New(color.FgYellow, color.OpBold),
	color.New(color.FgMagenta, color.OpBold),
	color.New(color.FgBlue, color.OpBold),
}

// renderer prints agent updates under a header each time the speaker changes.
type renderer struct {
	w       io.Writer
	colours bool
	last    string
	styles  map[string]color.Style
}

func newRenderer(w io.Writer, colours bool) *renderer {
	return &renderer{w: w, colours: colours, styles: make(map[string]color.Style)}
}

func (r *renderer) render(e event.Event) error {
	var err error
	switch e := e.(type) {
	case event.UIMessage:
		_, err = fmt.Fprintf(r.w, "%s\n", r.paint(color.New(color.FgGray), e.Text))
	case event.Start:
	case event.AgentUpdate:
		if e.Agent != r.last {
			r.last = e.Agent
			_, err = fmt.Fprintf(r.w, "\n%s\n", r.paint(r.style(e.Agent), "["+e.Agent+"]"))
			if err != nil {
				return err
			}
		}
		_, err = io.WriteString(r.w, e.Content)
	case event.AgentsComplete:
		_, err = fmt.Fprintf(r.w, "\n\n%s\n", r.paint(color.New(color.FgGray), "--- perspectives complete ---"))
	case event.SynthesisStart:
		r.last = ""
		_, err = fmt.Fprintf(r.w, "%s\n", r.paint(color.New(color.FgGray), "--- synthesis ---"))
	case event.Complete:
		_, err = fmt.Fprintln(r.w)
	case event.Error:
		_, err = fmt.Fprintf(r.w, "\n%s\n", r.paint(color.New(color.FgRed, color.OpBold), "Error: "+e.Message))
	}
	return err
}

func (r *renderer) style(agent string) color.Style {
	if s, ok := r.styles[agent]; ok {
		return s
	}
	s := agentStyles[len(r.styles)%len(agentStyles)]
	r.styles[agent] = s
	return s
}

func (r *renderer) paint(style color.Style, text string) string {
	if !r.colours {
		return text
	}
	return style.Render(text)
}
