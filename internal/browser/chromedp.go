package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"
)

func init() {
	for _, name := range []string{"chromium", "chrome", "chrome-beta", "edge"} {
		Register(name, func(log logrus.FieldLogger) Adapter {
			return &chromeAdapter{log: log}
		})
	}
}

// execPaths maps browser names to well-known binary names; an empty value
// lets chromedp locate the default Chrome install.
var execPaths = map[string]string{
	"chromium":    "chromium",
	"chrome":      "",
	"chrome-beta": "google-chrome-beta",
	"edge":        "microsoft-edge",
}

// chromeAdapter drives a chromium-family browser via the DevTools protocol.
type chromeAdapter struct {
	log         logrus.FieldLogger
	browserName string

	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

func (a *chromeAdapter) Name() string {
	return "chromedp"
}

// Init launches the browser process. The allocator is parented to the
// background context so the handle outlives the Init call's context.
func (a *chromeAdapter) Init(ctx context.Context, browserName string, opts Options) error {
	a.browserName = browserName
	a.log = a.log.WithFields(logrus.Fields{
		"component": "chromedp_adapter",
		"browser":   browserName,
	})

	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts,
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("force-device-scale-factor", "1"),
	)

	execPath := opts.ExecPath
	if execPath == "" {
		execPath = execPaths[browserName]
	}
	if execPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(execPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	a.allocCancel = allocCancel

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	a.browserCtx = browserCtx
	a.browserCancel = browserCancel

	// Start the browser process eagerly so init failures surface here
	// rather than on the first capture.
	startCtx := browserCtx
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		startCtx, cancel = context.WithDeadline(browserCtx, deadline)
		defer cancel()
	}

	if err := chromedp.Run(startCtx); err != nil {
		a.browserCancel()
		a.allocCancel()
		return fmt.Errorf("launching %s: %w", browserName, err)
	}

	a.log.Debug("browser launched")

	return nil
}

// Capture opens a fresh tab, navigates, applies interactions and extracts a
// PNG screenshot. The caller's context deadline is propagated for
// best-effort cancellation.
func (a *chromeAdapter) Capture(ctx context.Context, req Request) (*Screenshot, error) {
	tabCtx, tabCancel := chromedp.NewContext(a.browserCtx)
	defer tabCancel()

	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		tabCtx, cancel = context.WithDeadline(tabCtx, deadline)
		defer cancel()
	}

	actions := make([]chromedp.Action, 0, 4+len(req.Interactions))

	if req.Viewport.Width > 0 && req.Viewport.Height > 0 {
		actions = append(actions, chromedp.EmulateViewport(int64(req.Viewport.Width), int64(req.Viewport.Height)))
	}

	actions = append(actions, chromedp.Navigate(req.URL))

	for _, interaction := range req.Interactions {
		action, err := a.interactionAction(interaction)
		if err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}

	var buf []byte
	if req.Target != "" {
		actions = append(actions, chromedp.Screenshot(req.Target, &buf, chromedp.NodeVisible))
	} else {
		actions = append(actions, chromedp.FullScreenshot(&buf, 100))
	}

	if err := chromedp.Run(tabCtx, actions...); err != nil {
		return nil, fmt.Errorf("capturing %s: %w", req.URL, err)
	}

	return &Screenshot{Data: buf}, nil
}

func (a *chromeAdapter) interactionAction(interaction Interaction) (chromedp.Action, error) {
	switch interaction.Type {
	case "click":
		return chromedp.Click(interaction.Selector, chromedp.NodeVisible), nil
	case "hover":
		script := fmt.Sprintf(
			"document.querySelector(%q).dispatchEvent(new MouseEvent('mouseover', {bubbles: true}))",
			interaction.Selector,
		)
		return chromedp.Evaluate(script, nil), nil
	case "type":
		return chromedp.SendKeys(interaction.Selector, interaction.Value), nil
	case "wait":
		return chromedp.WaitVisible(interaction.Selector), nil
	case "sleep":
		d, err := time.ParseDuration(interaction.Value)
		if err != nil {
			return nil, fmt.Errorf("invalid sleep duration %q: %w", interaction.Value, err)
		}
		return chromedp.Sleep(d), nil
	default:
		return nil, fmt.Errorf("unsupported interaction type %q", interaction.Type)
	}
}

// Dispose shuts down the browser process.
func (a *chromeAdapter) Dispose() error {
	if a.browserCtx != nil {
		if err := chromedp.Cancel(a.browserCtx); err != nil {
			a.browserCancel()
			a.allocCancel()
			return fmt.Errorf("closing %s: %w", a.browserName, err)
		}
	}

	if a.browserCancel != nil {
		a.browserCancel()
	}
	if a.allocCancel != nil {
		a.allocCancel()
	}

	a.log.Debug("browser disposed")

	return nil
}
