package main

import (
	"fmt"
	"image/png"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wudi/readaloud/observability"
	"github.com/wudi/readaloud/ocr"
	_ "github.com/wudi/readaloud/ocr/tesseract" // register the default OCR engine
	"github.com/wudi/readaloud/render"
	"github.com/wudi/readaloud/session"
	"github.com/wudi/readaloud/speech"
	"github.com/wudi/readaloud/tts"
	"github.com/wudi/readaloud/viewer"
)

var (
	flagPage         int
	flagZoom         float64
	flagOCRDPI       int
	flagThreshold    float64
	flagLanguages    []string
	flagPSM          int
	flagVoice        string
	flagRate         int
	flagSpeechBin    string
	flagMute         bool
	flagHighlightOut string
	flagVerbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "readaloud",
	Short: "Read PDF pages aloud with OCR-synchronized highlighting",
	Long: `readaloud renders a PDF page, recognizes its text with OCR, and reads the
result aloud segment by segment. While reading it tracks the segment being
spoken, so display layers can highlight it at the current zoom level.`,
	SilenceUsage: true,
}

var pagesCmd = &cobra.Command{
	Use:   "pages <file.pdf>",
	Short: "Print the page count of a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := render.Open(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), doc.PageCount())
		return nil
	},
}

var readCmd = &cobra.Command{
	Use:   "read <file.pdf>",
	Short: "OCR a page and read it aloud",
	Args:  cobra.ExactArgs(1),
	RunE:  runRead,
}

func init() {
	readCmd.Flags().IntVar(&flagPage, "page", -1, "zero-based page to read (default: resume last page)")
	readCmd.Flags().Float64Var(&flagZoom, "zoom", 1.0, "display zoom factor for highlight snapshots")
	readCmd.Flags().IntVar(&flagOCRDPI, "ocr-dpi", ocr.DefaultDPI, "fixed OCR processing resolution")
	readCmd.Flags().Float64Var(&flagThreshold, "threshold", 0.5, "confidence threshold; segments at or below it are dropped")
	readCmd.Flags().StringSliceVar(&flagLanguages, "lang", nil, "OCR language hints (e.g. eng,chi_sim)")
	readCmd.Flags().IntVar(&flagPSM, "psm", -1, "Tesseract page segmentation mode (-1 keeps the engine default)")
	readCmd.Flags().StringVar(&flagVoice, "voice", "", "speech voice")
	readCmd.Flags().IntVar(&flagRate, "rate", 0, "speech rate in words per minute")
	readCmd.Flags().StringVar(&flagSpeechBin, "speech-bin", speech.DefaultBinary, "speech synthesizer binary")
	readCmd.Flags().BoolVar(&flagMute, "mute", false, "run the pipeline without audio output")
	readCmd.Flags().StringVar(&flagHighlightOut, "highlight-out", "", "directory for per-segment highlight snapshots (PNG)")
	readCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose logging")
	rootCmd.AddCommand(readCmd, pagesCmd)
}

func buildLogger() (observability.Logger, func()) {
	cfg := zap.NewProductionConfig()
	if flagVerbose {
		cfg = zap.NewDevelopmentConfig()
	}
	zl, err := cfg.Build()
	if err != nil {
		return observability.NopLogger{}, func() {}
	}
	return observability.NewZapLogger(zl), func() { _ = zl.Sync() }
}

func buildEngine() (speech.Engine, error) {
	if flagMute {
		return speech.Null{}, nil
	}
	var opts []speech.CommandOption
	opts = append(opts, speech.WithBinary(flagSpeechBin))
	if flagVoice != "" {
		opts = append(opts, speech.WithVoice(flagVoice))
	}
	if flagRate > 0 {
		opts = append(opts, speech.WithRate(flagRate))
	}
	eng := speech.NewCommand(opts...)
	if err := eng.Validate(); err != nil {
		return nil, err
	}
	return eng, nil
}

func runRead(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	log, flush := buildLogger()
	defer flush()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	doc, err := render.Open(ctx, path)
	if err != nil {
		return err
	}
	engine, err := buildEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	store, err := session.DefaultStore()
	if err != nil {
		return err
	}
	sess, err := store.Load()
	if err != nil {
		log.Warn("session restore failed", observability.Error("cause", err))
		sess = session.Session{}
	}

	page := flagPage
	if page < 0 {
		if sess.LastFile == path {
			page = sess.LastPage
		} else {
			page = 0
		}
	}

	loop := viewer.NewLoop()
	defer loop.Close()

	done := make(chan error, 1)
	var total int
	view := newView(cmd, loop, doc, engine, log, &total, done)
	view.SetZoom(flagZoom)
	view.GoToPage(page)

	// A SIGINT requests a stop; the in-flight utterance finishes first.
	go func() {
		<-ctx.Done()
		view.StopReading()
	}()

	if err := view.StartReadAloud(ctx); err != nil {
		return err
	}
	result := make(chan error, 1)
	go func() {
		result <- <-done
		loop.Close()
	}()
	loop.Run()

	if err := <-result; err != nil {
		return err
	}
	if err := store.Save(session.Session{LastFile: path, LastPage: view.Page()}); err != nil {
		log.Warn("session save failed", observability.Error("cause", err))
	}
	return nil
}

func newView(cmd *cobra.Command, loop *viewer.Loop, doc *render.Document, engine speech.Engine, log observability.Logger, total *int, done chan error) *viewer.View {
	var ocrOpts []ocr.InputOption
	if flagPSM >= 0 {
		ocrOpts = append(ocrOpts, ocr.WithTesseractPSM(flagPSM))
	}
	var view *viewer.View
	view = viewer.New(loop, doc, engine,
		viewer.WithOCRDPI(flagOCRDPI),
		viewer.WithConfidenceThreshold(flagThreshold),
		viewer.WithLanguages(flagLanguages...),
		viewer.WithOCROptions(ocrOpts...),
		viewer.WithLogger(log),
		viewer.WithOCRHook(func(o ocr.Outcome) {
			if o.Err != nil {
				done <- fmt.Errorf("recognition failed: %w", o.Err)
				return
			}
			if o.Sequence.Empty() {
				fmt.Fprintln(cmd.OutOrStdout(), "no readable text on this page")
				done <- nil
				return
			}
			*total = len(o.Sequence)
			fmt.Fprintf(cmd.OutOrStdout(), "recognized %d text segments\n", *total)
		}),
		viewer.WithNotificationHook(func(n tts.Notification) {
			switch n.Kind {
			case tts.SegmentStarted:
				fmt.Fprintf(cmd.OutOrStdout(), "[%d/%d] %s\n", n.Index+1, *total, n.Segment.Text)
				if flagHighlightOut != "" {
					saveSnapshot(cmd, view, log, n.Index)
				}
			case tts.SessionEnded:
				if n.Stopped {
					fmt.Fprintln(cmd.OutOrStdout(), "stopped")
				}
				done <- nil
			}
		}),
	)
	return view
}

// saveSnapshot writes the zoomed page with the active highlight composited,
// one PNG per segment. Runs on the loop goroutine.
func saveSnapshot(cmd *cobra.Command, view *viewer.View, log observability.Logger, index int) {
	img, err := view.RenderDisplay(cmd.Context())
	if err != nil {
		log.Warn("snapshot render failed", observability.Error("cause", err))
		return
	}
	if err := os.MkdirAll(flagHighlightOut, 0o755); err != nil {
		log.Warn("snapshot dir failed", observability.Error("cause", err))
		return
	}
	name := filepath.Join(flagHighlightOut, fmt.Sprintf("segment-%03d.png", index))
	f, err := os.Create(name)
	if err != nil {
		log.Warn("snapshot create failed", observability.Error("cause", err))
		return
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		log.Warn("snapshot encode failed", observability.Error("cause", err))
	}
}
