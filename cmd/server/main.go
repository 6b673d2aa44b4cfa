// @title         freelance matching API
// @version       1.0
// @description   Подбор фрилансеров под проекты на основе эмбеддингов и LLM-объяснений, расчёт налогов и проверка реквизитов счетов.
// @BasePath      /api/v1
// @schemes       http
// @host          localhost:8080
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Токен авторизации. Поддерживаются форматы: "Bearer <JWT>" или "<JWT>".
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var v = viper.New()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "freelance",
		Short:         "Freelance matching and invoicing service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	pf := root.PersistentFlags()
	pf.Bool("debug", false, "enable debug logging")
	pf.Bool("json", false, "log in JSON format")
	pf.String("port", "", "HTTP port (overrides PORT)")
	_ = v.BindPFlag("log_debug", pf.Lookup("debug"))
	_ = v.BindPFlag("log_json", pf.Lookup("json"))
	_ = v.BindPFlag("port", pf.Lookup("port"))

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newEmbeddingsCmd(),
		newInvoiceCmd(),
		newTokenCmd(),
		newVersionCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
