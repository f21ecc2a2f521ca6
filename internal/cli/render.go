package cli

import (
	"fmt"

	"github.com/havrydotdev/catclient/internal/catclient"
	"github.com/havrydotdev/catclient/pkg/mc"
	"github.com/pterm/pterm"
)

var stageTitles = map[mc.Stage]string{
	mc.StageDescriptor: "Version info",
	mc.StageClient:     "Client jar",
	mc.StageLibraries:  "Libraries",
	mc.StageAssetIndex: "Asset index",
	mc.StageAssets:     "Assets",
	mc.StageLogging:    "Log config",
}

// eventRenderer draws controller events: one progress bar per stage and a
// pterm line for everything else.
type eventRenderer struct {
	bar   *pterm.ProgressbarPrinter
	stage mc.Stage
}

func (r *eventRenderer) handle(ev catclient.Event) {
	switch ev.Kind {
	case catclient.EventProgress:
		r.progress(ev)
	case catclient.EventStatus:
		r.stop()
		pterm.Info.Println(ev.Message)
	case catclient.EventWarning:
		r.stop()
		pterm.Warning.Println(ev.Message)
	case catclient.EventDone:
		r.stop()
		pterm.Success.Println(ev.Message)
	case catclient.EventError:
		r.stop()
	}
}

func (r *eventRenderer) progress(ev catclient.Event) {
	if ev.Total <= 1 {
		return
	}

	if r.bar == nil || r.stage != ev.Stage {
		r.stop()

		title := stageTitles[ev.Stage]
		if title == "" {
			title = string(ev.Stage)
		}

		bar, err := pterm.DefaultProgressbar.
			WithTitle(fmt.Sprintf("Downloading %s", title)).
			WithTotal(ev.Total).
			Start()
		if err != nil {
			return
		}
		r.bar, r.stage = bar, ev.Stage
	}

	if delta := ev.Done - r.bar.Current; delta > 0 {
		r.bar.Add(delta)
	}
}

func (r *eventRenderer) stop() {
	if r.bar == nil {
		return
	}

	_, _ = r.bar.Stop()
	r.bar = nil
}
