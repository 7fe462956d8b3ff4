package app

import (
	"context"
	"errors"
	"fmt"

	"pricewatch/internal/service"
)

// Notify pushes one digest of the qualifying ASINs immediately.
func (a *App) Notify(ctx context.Context, opts NotifyOptions) error {
	notifier := a.newNotifier()
	if notifier == nil {
		return errors.New("no alert channel configured; enable alerting.telegram")
	}

	src, err := NewSource(a.Config)
	if err != nil {
		return err
	}

	criteria := a.alertCriteria()
	if opts.Criteria != nil {
		criteria = *opts.Criteria
	}

	svc := service.New(src, a.newEngine(), notifier, service.Options{
		AlertsEnabled: true,
		AlertCriteria: criteria,
		MaxAlertRows:  a.Config.Alerting.MaxRows,
		UpdateTime:    a.Config.Report.UpdateTime,
	}, a.Logger)
	if _, err := svc.Reload(ctx); err != nil {
		return loadFailed(err)
	}

	sent, err := svc.Notify(ctx)
	if err != nil {
		return err
	}
	if !sent {
		fmt.Fprintln(a.Out, "nothing to send: "+criteria.Normalize().String())
		return nil
	}
	fmt.Fprintln(a.Out, "digest sent")
	return nil
}
