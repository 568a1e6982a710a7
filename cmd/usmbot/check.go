package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// checkCmd 只读检查：凭证、交易所连通性和安全检查结果，不下单
func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify credentials and report whether a trade would be allowed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			c := buildContainers(cfg, true)
			defer c.Close()

			engine, err := c.Engine()
			if err != nil {
				return err
			}
			gw := c.Infra().Gateway()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			allowed, err := engine.Gate().CanProceed(ctx)
			if err != nil {
				return err
			}
			held, err := gw.GetBalance(ctx, cfg.Trading.Asset)
			if err != nil {
				return err
			}
			price, err := gw.GetPrice(ctx, cfg.Trading.Asset)
			if err != nil {
				return err
			}

			fmt.Printf("product:        %s\n", cfg.ProductID())
			fmt.Printf("price:          %.2f\n", price)
			fmt.Printf("held:           %v %s\n", held, cfg.Trading.Asset)
			fmt.Printf("orders clear:   %v\n", allowed)
			fmt.Printf("would buy:      %v\n", allowed && held < engine.Config().DustThreshold)
			return nil
		},
	}
}
