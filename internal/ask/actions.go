package ask

import (
	"fmt"
	"strings"

	"github.com/tucommenceapousser/tutodiy/internal/common"
	"github.com/urfave/cli/v2"
)

// AskAction answers a question from the terminal with the same service as
// POST /ask.
func AskAction(c *cli.Context) error {
	logger := common.Logger(c)

	cfg, err := common.LoadConfig(c)
	if err != nil {
		return err
	}

	question := strings.Join(c.Args().Slice(), " ")
	asker := common.NewAsker(cfg, common.NewOpenAIClient(cfg), logger)
	fmt.Println(asker.Answer(c.Context, question))
	return nil
}
