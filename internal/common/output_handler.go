package common

import (
	"fmt"

	"skillvet/internal/errors"
	"skillvet/internal/formatters"
)

// CommandConfig carries the output flags shared by every command.
type CommandConfig struct {
	OutputFile   string
	OutputFormat string
}

// OutputHandler renders command results through the formatter registry and
// writes them to stdout or a file.
type OutputHandler struct {
	fileProcessor *FileProcessor
	registry      *formatters.FormatterRegistry
	logger        *errors.Logger
}

func NewOutputHandler(logger *errors.Logger) *OutputHandler {
	return &OutputHandler{
		fileProcessor: NewFileProcessor(logger),
		registry:      formatters.GlobalRegistry,
		logger:        logger,
	}
}

// HandleOutput formats data per the command flags and writes it out. Output
// destination is validated before formatting so a bad path fails fast.
func (oh *OutputHandler) HandleOutput(data any, config CommandConfig) error {
	if err := oh.fileProcessor.ValidateOutputFile(config.OutputFile); err != nil {
		return err
	}

	output, err := oh.registry.Format(data, config.OutputFormat)
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Failed to format output as %s", config.OutputFormat), err)
	}

	if config.OutputFile == "" {
		fmt.Print(output)
		return nil
	}

	if err := oh.fileProcessor.WriteFile(config.OutputFile, output); err != nil {
		return err
	}
	oh.logger.Info("Output written successfully",
		"file", config.OutputFile, "format", config.OutputFormat)
	return nil
}

// GetSupportedFormats returns every format the registry can render.
func (oh *OutputHandler) GetSupportedFormats() []string {
	return oh.registry.GetSupportedFormats()
}
