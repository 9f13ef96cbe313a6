package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	internalApp "github.com/haierkeys/link-editor-service/internal/app"
	"github.com/haierkeys/link-editor-service/internal/dto"
	"github.com/haierkeys/link-editor-service/internal/linktype"
	"github.com/haierkeys/link-editor-service/internal/service"
	"github.com/haierkeys/link-editor-service/pkg/code"
	"github.com/haierkeys/link-editor-service/pkg/i18n"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type resolveFlags struct {
	config     string // Configuration file, the embedded default when empty // 配置文件，为空时使用内置默认配置
	lang       string // Message language // 消息语言
	linkTypeID string // Force a link type // 指定链接类型
}

// resolveResult is one line of the resolve command output
type resolveResult struct {
	Href   string              `json:"href"`
	Result *dto.LinkResolveDTO `json:"result,omitempty"`
	Error  string              `json:"error,omitempty"`
}

func init() {
	flags := new(resolveFlags)

	var resolveCommand = &cobra.Command{
		Use:          "resolve [-t link_type] [-l lang] href...",
		Short:        "Resolve hrefs with the registered link types and print the models",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			data := []byte(configDefault)
			if flags.config != "" {
				var err error
				if data, err = os.ReadFile(flags.config); err != nil {
					return errors.Wrap(err, "read config file failed")
				}
			}
			cfg, err := internalApp.ParseConfig(data)
			if err != nil {
				return err
			}

			registry, err := linktype.NewRegistry()
			if err != nil {
				return err
			}
			uni, err := i18n.NewUniversalTranslator(linktype.Catalogs()...)
			if err != nil {
				return err
			}
			lang := code.NormalizeLang(flags.lang)
			trans, _ := uni.GetTranslator(lang)
			t := i18n.For(trans)

			svc := service.NewLinkService(registry, cfg.GetServiceConfig(), bootstrapLogger)

			failed := 0
			results := make([]resolveResult, 0, len(args))
			for _, href := range args {
				res, err := svc.Resolve(context.Background(), t, &dto.LinkResolveRequest{Href: href, LinkTypeID: flags.linkTypeID})
				if err != nil {
					failed++
					results = append(results, resolveResult{Href: href, Error: errorText(err, lang)})
					continue
				}
				results = append(results, resolveResult{Href: href, Result: res})
			}

			out, err := sonic.ConfigStd.MarshalIndent(results, "", "  ")
			if err != nil {
				return errors.Wrap(err, "encode results")
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))

			if failed > 0 {
				return errors.Errorf("%d of %d hrefs could not be resolved", failed, len(args))
			}
			return nil
		},
	}

	rootCmd.AddCommand(resolveCommand)
	fs := resolveCommand.Flags()
	fs.StringVarP(&flags.config, "config", "c", "", "config file")
	fs.StringVarP(&flags.lang, "lang", "l", code.FALLBACK_LNG, "message language (en, zh)")
	fs.StringVarP(&flags.linkTypeID, "type", "t", "", "link type id")
}

// errorText renders a service error in lang with its details
func errorText(err error, lang string) string {
	var codeErr *code.Code
	if !errors.As(err, &codeErr) {
		return err.Error()
	}
	if codeErr.HaveDetails() {
		return codeErr.MsgIn(lang) + ": " + strings.Join(codeErr.Details(), ", ")
	}
	return codeErr.MsgIn(lang)
}
