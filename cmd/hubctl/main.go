// hubctl herramientas de operación del portal.
//
//	hubctl repair-json [archivo]                     JSON del ERP reparado (stdin si no hay archivo)
//	hubctl view-state clear --user U --screen S      borra el estado de tabla persistido
//	hubctl nfe inspect archivo.xml                   precarga de borrador que genera una NF-e
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/hub-portal/internal/application/draft"
	"github.com/jhoicas/hub-portal/internal/domain/entity"
	vs "github.com/jhoicas/hub-portal/internal/domain/viewstate"
	"github.com/jhoicas/hub-portal/internal/infrastructure/cache"
	"github.com/jhoicas/hub-portal/internal/infrastructure/nfe"
	"github.com/jhoicas/hub-portal/pkg/config"
	"github.com/jhoicas/hub-portal/pkg/jsonrepair"
	"github.com/jhoicas/hub-portal/pkg/logger"
)

// exitErr lleva el código de salida por el camino de error de cobra.
type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

func codeError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hubctl",
		Short:         "Herramientas de operación del hub portal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(repairJSONCmd(), viewStateCmd(), nfeCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		var ee *exitErr
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		os.Exit(1)
	}
}

func repairJSONCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repair-json [archivo]",
		Short: "Repara una respuesta JSON del ERP (objetos pegados, varios valores de nivel superior)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return codeError(2, "leer entrada: %s", err)
			}
			fixed, changed := jsonrepair.Repair(data)
			if !json.Valid(fixed) {
				return codeError(3, "el JSON no se pudo reparar")
			}
			if changed {
				fmt.Fprintln(cmd.ErrOrStderr(), "reparado")
			}
			_, err = cmd.OutOrStdout().Write(append(fixed, '\n'))
			return err
		},
	}
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(args[0])
}

func viewStateCmd() *cobra.Command {
	var user, screen string
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Borra el estado de tabla persistido de un usuario en una pantalla",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return codeError(2, "configuración: %s", err)
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			rdb, err := cache.NewClient(ctx, cfg.Redis)
			if err != nil {
				return codeError(3, "%s", err)
			}
			defer rdb.Close()

			opts := func(string) vs.Options { return vs.Options{DefaultPageSize: cfg.ViewState.DefaultPageSize} }
			store := cache.NewViewStateStore(rdb, cfg.ViewState.KeyPrefix, cfg.ViewState.TTL, opts, logger.Nop().Zerolog())
			if err := store.Delete(ctx, user, screen); err != nil {
				return codeError(3, "borrar %s: %s", store.Key(user, screen), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "estado borrado: %s\n", store.Key(user, screen))
			return nil
		},
	}
	clearCmd.Flags().StringVar(&user, "user", "", "ID del usuario")
	clearCmd.Flags().StringVar(&screen, "screen", "", "Pantalla (prenotas, classificacao, aprovacao, doca)")
	_ = clearCmd.MarkFlagRequired("user")
	_ = clearCmd.MarkFlagRequired("screen")

	cmd := &cobra.Command{Use: "view-state", Short: "Estado de tablas persistido en Redis"}
	cmd.AddCommand(clearCmd)
	return cmd
}

func nfeCmd() *cobra.Command {
	inspect := &cobra.Command{
		Use:   "inspect <archivo.xml>",
		Short: "Muestra la precarga de borrador que genera una NF-e",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return codeError(2, "leer XML: %s", err)
			}
			doc, err := nfe.NewParser().Parse(data)
			if err != nil {
				return codeError(3, "%s", err)
			}
			d := &entity.Draft{}
			if err := draft.ApplyNFe(d, doc); err != nil {
				return codeError(3, "%s", err)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"access_key": doc.AccessKey,
				"header":     d.Header,
				"items":      d.Items,
			})
		},
	}
	cmd := &cobra.Command{Use: "nfe", Short: "Utilidades de NF-e"}
	cmd.AddCommand(inspect)
	return cmd
}
