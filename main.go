package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	orchestratorx "github.com/tanpawarit/transfer-orchestrator/agent/agents/orchestrator"
	contractx "github.com/tanpawarit/transfer-orchestrator/agent/contract"
	llmx "github.com/tanpawarit/transfer-orchestrator/agent/llm"
	promptx "github.com/tanpawarit/transfer-orchestrator/agent/prompt"
	toolx "github.com/tanpawarit/transfer-orchestrator/agent/tool"
	casestorex "github.com/tanpawarit/transfer-orchestrator/pkg/casestore"
	configx "github.com/tanpawarit/transfer-orchestrator/pkg/config"
	documentx "github.com/tanpawarit/transfer-orchestrator/pkg/document"
	logx "github.com/tanpawarit/transfer-orchestrator/pkg/logger"
	qstashx "github.com/tanpawarit/transfer-orchestrator/pkg/qstash"
)

// NotifyConfig names where a pending case is announced. Empty disables it.
type NotifyConfig struct {
	Destination string `split_words:"true"`
}

type options struct {
	doc     string
	caseID  string
	source  string
	persist bool
	decide  string
	list    bool
	limit   int
	show    string
}

func main() {
	var opts options
	flag.StringVar(&opts.doc, "doc", "", "path to a transfer document, or - for stdin")
	flag.StringVar(&opts.caseID, "case", "", "case id (generated when empty)")
	flag.StringVar(&opts.source, "source", "", "source label stored with the case")
	flag.BoolVar(&opts.persist, "persist", false, "store the reviewed case")
	flag.StringVar(&opts.decide, "decide", "", "record a human decision (APPROVE_TO_PROCEED or REQUEST_INFO_SENT) on -case")
	flag.BoolVar(&opts.list, "list", false, "list recent cases")
	flag.IntVar(&opts.limit, "limit", casestorex.DefaultListLimit, "number of cases for -list")
	flag.StringVar(&opts.show, "show", "", "print a stored case")
	configx.Parse()

	logx.Init(*configx.MustNew[logx.Config]("LOG"))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, opts, os.Stdin, os.Stdout); err != nil {
		log.Error().Err(err).Msg("transfer orchestrator failed")
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, stdin io.Reader, stdout io.Writer) error {
	switch {
	case opts.decide != "":
		return decide(ctx, opts, stdout)
	case opts.list:
		return list(ctx, opts.limit, stdout)
	case opts.show != "":
		return show(ctx, opts.show, stdout)
	case opts.doc != "":
		return review(ctx, opts, stdin, stdout)
	default:
		flag.Usage()
		return errors.New("one of -doc, -decide, -list or -show is required")
	}
}

func review(ctx context.Context, opts options, stdin io.Reader, stdout io.Writer) error {
	raw, err := documentx.Read(opts.doc, stdin)
	if err != nil {
		return err
	}
	text := documentx.Normalize(raw)

	llmCfg := configx.MustNew[llmx.Config]("LLM")
	model, err := llmx.NewChatModel(ctx, *llmCfg)
	if err != nil {
		return err
	}

	orch, err := orchestratorx.NewTransfer(toolx.CatalogConfig{
		Model:              model,
		Prompts:            promptx.LoadPromptSet(),
		ExtractTemperature: llmCfg.ExtractTemperature,
		ReviewTemperature:  llmCfg.ReviewTemperature,
	})
	if err != nil {
		return err
	}

	caseID := strings.TrimSpace(opts.caseID)
	if caseID == "" {
		caseID = uuid.NewString()
	}
	source := opts.source
	if source == "" && opts.doc != "-" {
		source = opts.doc
	}

	st, err := orchestratorx.NewRouter(orch).Route(ctx, orchestratorx.Payload{DocumentText: text})
	if err != nil {
		return fmt.Errorf("case %s: %w", caseID, err)
	}

	if err := writeJSON(stdout, struct {
		CaseID  string                  `json:"case_id"`
		State   contractx.WorkflowState `json:"state"`
		ToolLog []toolx.LogEntry        `json:"tool_log"`
	}{caseID, st, orch.ToolLog()}); err != nil {
		return err
	}

	if opts.persist {
		store, closeStore, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		if err := store.Save(ctx, casestorex.Case{
			ID:           caseID,
			SourceName:   source,
			DocumentText: text,
			State:        st,
		}); err != nil {
			return err
		}
		log.Info().Str("case_id", caseID).Msg("case stored")
	}

	return notify(ctx, caseID, st)
}

func decide(ctx context.Context, opts options, stdout io.Writer) error {
	caseID := strings.TrimSpace(opts.caseID)
	if caseID == "" {
		return errors.New("-decide requires -case")
	}
	decision, err := casestorex.ParseDecision(opts.decide)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.SetHumanDecision(ctx, caseID, decision); err != nil {
		return err
	}
	log.Info().Str("case_id", caseID).Str("decision", string(decision)).Msg("human decision recorded")
	_, err = fmt.Fprintf(stdout, "%s %s\n", caseID, decision)
	return err
}

func list(ctx context.Context, limit int, stdout io.Writer) error {
	store, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	cases, err := store.List(ctx, limit)
	if err != nil {
		return err
	}
	for _, c := range cases {
		if _, err := fmt.Fprintf(stdout, "%s\t%s\t%s\t%s\t%s\n",
			c.ID,
			c.CreatedAt.Format(time.RFC3339),
			c.State.Validation.Status,
			c.State.Path,
			c.Outcome(),
		); err != nil {
			return err
		}
	}
	return nil
}

func show(ctx context.Context, caseID string, stdout io.Writer) error {
	store, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	c, err := store.Get(ctx, caseID)
	if err != nil {
		return err
	}
	return writeJSON(stdout, c)
}

func openStore(ctx context.Context) (*casestorex.Store, func(), error) {
	cfg := configx.MustNew[casestorex.Config]("DATABASE")
	store, db, err := casestorex.Open(*cfg)
	if err != nil {
		return nil, nil, err
	}
	closeStore := func() {
		if err := db.Close(); err != nil {
			log.Warn().Err(err).Msg("close case store")
		}
	}
	if err := store.Init(ctx); err != nil {
		closeStore()
		return nil, nil, err
	}
	return store, closeStore, nil
}

// notify announces a case awaiting approval. A failed publish is logged and
// does not fail the run; the result has already been printed.
func notify(ctx context.Context, caseID string, st contractx.WorkflowState) error {
	notifyCfg := configx.MustNew[NotifyConfig]("NOTIFY")
	if strings.TrimSpace(notifyCfg.Destination) == "" {
		return nil
	}

	qstashCfg, err := configx.New[qstashx.Config]("QSTASH")
	if err != nil {
		return err
	}
	client, err := qstashx.NewClient(*qstashCfg)
	if err != nil {
		return err
	}

	body, err := json.Marshal(map[string]any{
		"case_id":    caseID,
		"verdict":    st.Validation.Status,
		"path":       st.Path,
		"human_gate": st.HumanGate,
		"summary":    st.Review.CaseSummary,
	})
	if err != nil {
		return err
	}

	res, err := client.Publish(ctx, notifyCfg.Destination, body)
	if err != nil {
		log.Warn().Err(err).Str("case_id", caseID).Msg("reviewer notification failed")
		return nil
	}
	log.Info().Str("case_id", caseID).Str("message_id", res.MessageID).Msg("reviewer notified")
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
