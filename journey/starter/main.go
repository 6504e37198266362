package main

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"

	"github.com/MABAIStrategies/kimi-automation-v1/journey/catalog"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/config"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/logging"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/types"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/workflows"
)

func main() {
	var cfg config.Starter
	if err := config.ParseEnv(&cfg); err != nil {
		log.Fatalln("Unable to load configuration", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalln("Unable to create logger", err)
	}
	defer func() { _ = logger.Sync() }()

	// Create Temporal client
	c, err := client.Dial(client.Options{
		HostPort: cfg.TemporalHost,
		Logger:   logging.NewTemporalLogger(logger),
	})
	if err != nil {
		log.Fatalln("Unable to create Temporal client", err)
	}
	defer c.Close()

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Fatalln("Unable to load catalog", err)
	}

	sessionID := cfg.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	workflowID := fmt.Sprintf("journey-%s", sessionID)

	input := types.JourneyInput{
		SessionID:        sessionID,
		Catalog:          cat,
		StrictNavigation: cfg.StrictNavigation,
		Timings:          cfg.Delays.Timings(),
		MaxActionsPerRun: cfg.MaxActionsPerRun,
		ViewerName:       cfg.ViewerName,
	}

	// Configure workflow options
	workflowOptions := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: cfg.TaskQueue,
	}

	log.Printf("Starting JourneyWorkflow: %s\n", workflowID)
	log.Printf("Session ID: %s\n", sessionID)

	we, err := c.ExecuteWorkflow(context.Background(), workflowOptions, workflows.JourneyWorkflow, input)
	if err != nil {
		log.Fatalln("Unable to start workflow", err)
	}

	log.Printf("Started workflow - WorkflowID: %s, RunID: %s\n", we.GetID(), we.GetRunID())
	log.Printf("\n📖 Journey Commands:\n")
	log.Printf("  View in UI: http://localhost:8080/namespaces/default/workflows/%s\n", workflowID)
	log.Printf("\n  Query state / ROI:\n")
	log.Printf("    tctl workflow query -w %s -qt %s\n", workflowID, workflows.QueryState)
	log.Printf("    tctl workflow query -w %s -qt %s\n", workflowID, workflows.QueryROI)
	log.Printf("\n  Name the traveler:\n")
	log.Printf("    tctl workflow signal -w %s -n %s -i '{\"type\":\"SET_VIEWER_NAME\",\"viewerName\":\"Frodo\"}'\n", workflowID, workflows.SignalDispatchAction)
	log.Printf("\n  Open the book (landing → map after the book-open delay):\n")
	log.Printf("    tctl workflow signal -w %s -n %s -i '{\"page\":\"map\"}'\n", workflowID, workflows.SignalNavigateAfter)
	log.Printf("\n  Choose a chapter:\n")
	log.Printf("    tctl workflow signal -w %s -n %s -i '{\"page\":\"chapter\",\"addChapterId\":\"shire-inbox\"}'\n", workflowID, workflows.SignalNavigateAfter)
	log.Printf("\n  Pay (from the checkout page):\n")
	log.Printf("    tctl workflow signal -w %s -n %s\n", workflowID, workflows.SignalSubmitPayment)
	log.Printf("\n  End the journey:\n")
	log.Printf("    tctl workflow signal -w %s -n %s\n", workflowID, workflows.SignalEndJourney)

	if cfg.Async {
		log.Printf("\n🚀 Journey started asynchronously. Use the commands above to interact.\n")
		return
	}

	log.Printf("\n⏳ Waiting for the journey to end (send %s to finish)...\n", workflows.SignalEndJourney)

	var result workflows.JourneyResult
	if err := we.Get(context.Background(), &result); err != nil {
		log.Fatalf("❌ Workflow execution failed: %v\n", err)
	}

	log.Printf("\n✅ Journey complete!\n")
	log.Printf("  Traveler: %s\n", result.State.ViewerName)
	log.Printf("  Chapters: %d\n", len(result.State.Cart))
	log.Printf("  Annual savings: $%.0f\n", result.ROI.TotalAnnualSavings)
	log.Printf("  Implementation cost: $%.0f\n", result.ROI.TotalImplementationCost)
	log.Printf("  ROI: %.1f%%\n", result.ROI.ROIPercentage)
	log.Printf("  Payback: %s\n", result.ROI.PaybackPeriod)
	log.Printf("  Actions applied: %d\n", result.Actions)
}
