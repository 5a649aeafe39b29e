package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"stryvepay/internal/domain"
	"stryvepay/internal/modules/payment"
	"stryvepay/internal/pkg/logger"
	"stryvepay/internal/pkg/shopify"
	"stryvepay/internal/pkg/stryve"
	"stryvepay/internal/repository"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type orderReport struct {
	Record *domain.StryvePayment   `json:"record"`
	Stryve *stryve.Order           `json:"stryve,omitempty"`
	Error  string                  `json:"stryve_error,omitempty"`
	Synced *payment.CallbackResult `json:"synced,omitempty"`
}

func getOrderCmd() *cobra.Command {
	var shop, ref string
	var sync bool

	cmd := &cobra.Command{
		Use:   "get-order",
		Short: "Show a payment record next to the order Stryve reports for it",
		Long: `Looks up the payment record for --shop/--ref and fetches the same order from
Stryve with the shop's API key. With --sync the verified status is written
back exactly as a customer callback would.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openDB()
			if err != nil {
				return err
			}
			shop = shopify.NormalizeShop(shop)

			payments := repository.NewStryvePaymentRepository(db)
			settings := repository.NewMerchantSettingsRepository(db)
			client := stryve.NewClient(cfg.Stryve.Timeout)
			ctx := cmd.Context()

			record, err := payments.GetByReference(ctx, shop, ref)
			if err != nil {
				return fmt.Errorf("load payment %s/%s: %w", shop, ref, err)
			}
			report := orderReport{Record: record}

			ms, err := settings.GetByShop(ctx, shop)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("load settings: %w", err)
			}
			if ms.Configured() {
				params := stryve.GetOrderParams{
					APIKey:            ms.APIKey,
					BaseURL:           stryve.ResolveBaseURL(ms.BaseURL, ms.Sandbox),
					MerchantReference: record.MerchantReference,
				}
				if record.StryveOrderID != nil {
					params.OrderID = *record.StryveOrderID
				}
				order, err := client.GetOrder(ctx, params)
				if err != nil {
					report.Error = err.Error()
				}
				report.Stryve = order
			} else {
				report.Error = "stryve is not configured for this shop"
			}

			if sync {
				appLogger, err := logger.New(cfg.Log.Level, "console")
				if err != nil {
					return err
				}
				svc, err := payment.NewService(payments, settings, client, cfg.Shopify.AppURL, logger.Printf(appLogger.With(zap.String("component", "stryvectl"))))
				if err != nil {
					return err
				}
				res, err := svc.HandleCallback(ctx, payment.CallbackParams{Shop: shop, Ref: ref})
				if err != nil {
					return fmt.Errorf("sync payment: %w", err)
				}
				report.Synced = res
			}

			return writeJSON(cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().StringVar(&shop, "shop", "", "shop domain (handle or *.myshopify.com)")
	cmd.Flags().StringVar(&ref, "ref", "", "merchant reference")
	cmd.Flags().BoolVar(&sync, "sync", false, "persist the verified status")
	_ = cmd.MarkFlagRequired("shop")
	_ = cmd.MarkFlagRequired("ref")
	return cmd
}

func purgeShopCmd() *cobra.Command {
	var shop string

	cmd := &cobra.Command{
		Use:   "purge-shop",
		Short: "Delete the settings and every payment record of a shop",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDB()
			if err != nil {
				return err
			}
			res, err := repository.NewShopDataRepository(db).PurgeShop(cmd.Context(), shopify.NormalizeShop(shop))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d payments and %d settings rows\n", res.Payments, res.Settings)
			return nil
		},
	}

	cmd.Flags().StringVar(&shop, "shop", "", "shop domain (handle or *.myshopify.com)")
	_ = cmd.MarkFlagRequired("shop")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
