package tui

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"

	"radarwatch/internal/app"
)

// Controls are the callbacks the dashboard fires on user input.
type Controls struct {
	RequestRefresh func()
	TogglePlayback func()
	OpenDetail     func()
	CloseDetail    func()
	Quit           func()
}

// Dashboard renders the terminal layout: a stats header, the radar image,
// a frame strip line and a scrolling activity pane. A detail page overlays
// the lot when a frame is zoomed.
type Dashboard struct {
	logger *zap.Logger

	tviewApp  *tview.Application
	pages     *tview.Pages
	statsView *tview.TextView
	imageView *tview.Image
	frameView *tview.TextView
	actView   *tview.TextView

	detailImage *tview.Image
	detailTitle *tview.TextView

	controls Controls

	actMu    sync.Mutex
	actLines []string
	events   chan string
	done     chan struct{}
	closed   atomic.Bool
	ready    chan struct{}

	playMu  sync.Mutex
	playing bool
	frameNo int
	frameN  int
}

const activityMaxLines = 8

// NewDashboard builds the terminal UI. Returns nil when disabled so every
// method degrades to a no-op.
func NewDashboard(logger *zap.Logger, enable bool, controls Controls) *Dashboard {
	if !enable {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	stats := tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	stats.SetBorder(true).SetTitle("Radar Feed").SetTitleAlign(tview.AlignLeft)

	img := tview.NewImage()
	img.SetBorder(true).SetTitle("Latest Frame").SetTitleAlign(tview.AlignLeft)

	frameLine := tview.NewTextView().SetDynamicColors(true).SetWrap(false)

	activity := tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	activity.SetBorder(true).SetTitle("Activity").SetTitleAlign(tview.AlignLeft)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(stats, 6, 0, false).
		AddItem(img, 0, 3, false).
		AddItem(frameLine, 1, 0, false).
		AddItem(activity, activityMaxLines+2, 0, false)

	detailImg := tview.NewImage()
	detailImg.SetBorder(true).SetTitleAlign(tview.AlignLeft)
	detailTitle := tview.NewTextView().SetDynamicColors(true).SetTextAlign(tview.AlignCenter)
	detail := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(detailTitle, 1, 0, false).
		AddItem(detailImg, 0, 1, false).
		AddItem(tview.NewTextView().SetTextAlign(tview.AlignCenter).SetText("esc or click to close"), 1, 0, false)

	pages := tview.NewPages().
		AddPage("main", layout, true, true).
		AddPage("detail", detail, true, false)

	tviewApp := tview.NewApplication().SetRoot(pages, true).EnableMouse(true)

	ready := make(chan struct{})
	var once sync.Once
	tviewApp.SetBeforeDrawFunc(func(screen tcell.Screen) bool {
		once.Do(func() { close(ready) })
		return false
	})

	d := &Dashboard{
		logger:      logger,
		tviewApp:    tviewApp,
		pages:       pages,
		statsView:   stats,
		imageView:   img,
		frameView:   frameLine,
		actView:     activity,
		detailImage: detailImg,
		detailTitle: detailTitle,
		controls:    controls,
		events:      make(chan string, 256),
		done:        make(chan struct{}),
		ready:       ready,
	}

	tviewApp.SetInputCapture(d.handleKey)
	tviewApp.SetMouseCapture(d.handleMouse)

	// Dedicated flusher so callers can drop instead of blocking when the UI lags.
	go d.runEventLoop()

	return d
}

// Run blocks on the tview event loop until Stop.
func (d *Dashboard) Run() error {
	if d == nil {
		return nil
	}
	return d.tviewApp.Run()
}

// Stop tears the UI down and restores the terminal. Safe to call more than
// once and safe against concurrent AppendActivity: the events channel is
// never closed, the flusher exits on done instead.
func (d *Dashboard) Stop() {
	if d == nil || d.tviewApp == nil {
		return
	}
	if d.closed.CompareAndSwap(false, true) {
		close(d.done)
	}
	d.tviewApp.Stop()
}

// WaitReady blocks until the first draw completed.
func (d *Dashboard) WaitReady() {
	if d == nil || d.ready == nil {
		return
	}
	<-d.ready
}

func (d *Dashboard) handleKey(event *tcell.EventKey) *tcell.EventKey {
	detailOpen := d.pages.HasPage("detail") && d.detailVisible()

	switch event.Key() {
	case tcell.KeyEscape:
		if detailOpen {
			d.fire(d.controls.CloseDetail)
			return nil
		}
		d.fire(d.controls.Quit)
		return nil
	case tcell.KeyEnter:
		if !detailOpen {
			d.fire(d.controls.OpenDetail)
			return nil
		}
	case tcell.KeyCtrlC:
		d.fire(d.controls.Quit)
		return nil
	}

	switch event.Rune() {
	case ' ':
		d.fire(d.controls.TogglePlayback)
		return nil
	case 'r', 'R':
		d.fire(d.controls.RequestRefresh)
		return nil
	case 'q', 'Q':
		d.fire(d.controls.Quit)
		return nil
	}

	return event
}

// handleMouse treats any click while the detail page is up as a backdrop
// close.
func (d *Dashboard) handleMouse(event *tcell.EventMouse, action tview.MouseAction) (*tcell.EventMouse, tview.MouseAction) {
	if action == tview.MouseLeftClick && d.detailVisible() {
		d.fire(d.controls.CloseDetail)
		return nil, action
	}
	return event, action
}

func (d *Dashboard) detailVisible() bool {
	front, _ := d.pages.GetFrontPage()
	return front == "detail"
}

func (d *Dashboard) fire(f func()) {
	if f != nil {
		f()
	}
}

// BindRunner wires the runner's display hooks into the dashboard.
func (d *Dashboard) BindRunner(r *app.Runner) {
	if d == nil {
		return
	}

	r.View().BindSinks(app.ViewSinks{
		UpdateStats: d.UpdateStats,
		ShowImage:   d.ShowImage,
	})
	player := r.Player()
	player.BindSinks(app.PlayerSinks{
		ShowFrame: func(index int, ref string) {
			d.SetFrameCount(player.FrameCount())
			d.ShowStripFrame(index, ref)
		},
		StateChanged: func(playing bool) {
			d.SetFrameCount(player.FrameCount())
			d.SetPlaying(playing)
		},
	})
	r.Overlay().BindSinks(app.OverlaySinks{
		Opened: d.ShowDetail,
		Closed: d.HideDetail,
	})
}

// UpdateStats refreshes the header pane.
func (d *Dashboard) UpdateStats(v app.StatsView) {
	if d == nil || d.closed.Load() {
		return
	}

	freshColor := "green"
	if v.Freshness == app.FreshnessStale {
		freshColor = "red"
	}

	text := fmt.Sprintf(
		"[yellow]Status:[-] %s   [yellow]Freshness:[-] [%s]%s[-]\n"+
			"[yellow]Archive:[-] %s images\n"+
			"[yellow]Captured:[-] %s (%s)\n"+
			"[yellow]Checked:[-] %s",
		v.Status, freshColor, v.Freshness,
		humanize.Comma(int64(v.TotalImages)),
		v.LastUpdate, v.AgeText,
		time.Now().Format("15:04:05"),
	)

	d.tviewApp.QueueUpdateDraw(func() {
		d.statsView.SetText(text)
	})
}

// ShowImage swaps the main radar frame. The bytes are complete by contract,
// so a decode failure means a bad frame, not a partial one.
func (d *Dashboard) ShowImage(frameID string, data []byte) {
	if d == nil || d.closed.Load() {
		return
	}

	m, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		d.logger.Warn("undecodable frame", zap.String("frame", frameID), zap.Error(err))
		return
	}

	d.tviewApp.QueueUpdateDraw(func() {
		d.imageView.SetImage(m)
		d.imageView.SetTitle(fmt.Sprintf("Latest Frame [%s]", frameID))
		d.detailImage.SetImage(m)
	})
	d.AppendActivity("frame " + frameID)
}

// ShowStripFrame updates the playback position line.
func (d *Dashboard) ShowStripFrame(index int, ref string) {
	if d == nil || d.closed.Load() {
		return
	}

	d.playMu.Lock()
	d.frameNo = index
	playing := d.playing
	frames := d.frameN
	d.playMu.Unlock()

	d.renderFrameLine(index, ref, playing, frames)
}

// SetFrameCount records the animation set size so the strip line can drop
// the play/pause affordances when there is nothing to animate.
func (d *Dashboard) SetFrameCount(n int) {
	if d == nil {
		return
	}
	d.playMu.Lock()
	d.frameN = n
	d.playMu.Unlock()
}

// SetPlaying updates the playback state indicator.
func (d *Dashboard) SetPlaying(playing bool) {
	if d == nil || d.closed.Load() {
		return
	}

	d.playMu.Lock()
	d.playing = playing
	index := d.frameNo
	frames := d.frameN
	d.playMu.Unlock()

	d.renderFrameLine(index, "", playing, frames)
}

// frameLine formats the playback strip. A single frame cannot animate, so
// the play/pause state and hint only appear for two or more frames.
func frameLine(index int, ref string, playing bool, frames int) string {
	var line string
	keys := "r: refresh  enter: zoom  q: quit"
	if frames >= 2 {
		state := "[red]⏸ paused[-]"
		if playing {
			state = "[green]▶ playing[-]"
		}
		line = fmt.Sprintf(" %s   frame %d", state, index)
		keys = "space: play/pause  " + keys
	} else {
		line = fmt.Sprintf(" frame %d", index)
	}
	if ref != "" {
		line += "   " + ref
	}
	return line + "   [gray](" + keys + ")[-]"
}

func (d *Dashboard) renderFrameLine(index int, ref string, playing bool, frames int) {
	line := frameLine(index, ref, playing, frames)

	d.tviewApp.QueueUpdateDraw(func() {
		d.frameView.SetText(line)
	})
}

// ShowDetail raises the zoom page for ref, reusing the current main image.
func (d *Dashboard) ShowDetail(ref string) {
	if d == nil || d.closed.Load() {
		return
	}

	d.tviewApp.QueueUpdateDraw(func() {
		d.detailTitle.SetText(fmt.Sprintf("[::b]%s[-:-:-]", ref))
		d.pages.SwitchToPage("detail")
	})
}

// HideDetail drops back to the main page.
func (d *Dashboard) HideDetail() {
	if d == nil || d.closed.Load() {
		return
	}

	d.tviewApp.QueueUpdateDraw(func() {
		d.pages.SwitchToPage("main")
	})
}

// AppendActivity adds a line to the activity pane, dropping on saturation
// to keep callers non-blocking.
func (d *Dashboard) AppendActivity(line string) {
	if d == nil || d.closed.Load() {
		return
	}
	select {
	case d.events <- line:
	default:
	}
}

func (d *Dashboard) runEventLoop() {
	for {
		select {
		case <-d.done:
			return
		case line := <-d.events:
			d.appendLine(line)
		}
	}
}

func (d *Dashboard) appendLine(line string) {
	tsLine := time.Now().Format("15:04:05 ") + line

	d.actMu.Lock()
	d.actLines = append(d.actLines, tsLine)
	if len(d.actLines) > activityMaxLines {
		d.actLines = d.actLines[len(d.actLines)-activityMaxLines:]
	}
	text := strings.Join(d.actLines, "\n")
	d.actMu.Unlock()

	d.tviewApp.QueueUpdateDraw(func() {
		d.actView.SetText(text)
		d.actView.ScrollToEnd()
	})
}
