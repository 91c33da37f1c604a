package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/agrolytics/maize-advisor/internal/model"
	"github.com/agrolytics/maize-advisor/internal/model/entities"
)

// errNoData makes an empty provider response count as a failed attempt so
// retry and fallback treat it like an error.
var errNoData = errors.New("provider returned no data")

// ObservationStore is the persistence contract the acquirer writes through.
type ObservationStore interface {
	ObservationByDate(ctx context.Context, farmID uint, date time.Time) (*entities.WeatherObservation, error)
	UpsertObservation(ctx context.Context, obs entities.WeatherObservation) error
	ObservationsBetween(ctx context.Context, farmID uint, from, to time.Time) ([]entities.WeatherObservation, error)
}

// TelemetrySink receives every accepted observation. May be nil.
type TelemetrySink interface {
	RecordObservation(obs entities.WeatherObservation)
}

// Options tune retry, fallback, validation and caching.
type Options struct {
	MaxAttempts       int           // attempts against the primary provider
	InitialWait       time.Duration // first backoff delay
	Multiplier        float64
	CallTimeout       time.Duration // per provider call
	FallbackEnabled   bool
	ValidationEnabled bool
	CacheTTL          time.Duration
}

func DefaultOptions() Options {
	return Options{
		MaxAttempts:       3,
		InitialWait:       time.Second,
		Multiplier:        2.0,
		CallTimeout:       30 * time.Second,
		FallbackEnabled:   true,
		ValidationEnabled: true,
		CacheTTL:          30 * time.Minute,
	}
}

// Acquirer answers weather lookups from a TTL cache first, then from an
// ordered provider chain with per-provider retry. The primary provider gets
// the full attempt budget; each fallback gets one attempt. Accepted
// current/historical observations are upserted into the store keyed on
// (farm, date).
type Acquirer struct {
	providers []Provider
	store     ObservationStore
	sink      TelemetrySink
	validator Validator
	opts      Options

	latest    *ttlCache[entities.WeatherObservation]
	forecasts *ttlCache[[]entities.WeatherObservation]
}

func NewAcquirer(providers []Provider, store ObservationStore, sink TelemetrySink, opts Options) (*Acquirer, error) {
	if len(providers) == 0 {
		return nil, errors.New("acquirer needs at least one provider")
	}
	if store == nil {
		return nil, errors.New("acquirer needs an observation store")
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	return &Acquirer{
		providers: providers,
		store:     store,
		sink:      sink,
		opts:      opts,
		latest:    newTTLCache[entities.WeatherObservation](opts.CacheTTL),
		forecasts: newTTLCache[[]entities.WeatherObservation](opts.CacheTTL),
	}, nil
}

// tryProvider runs fn with the given attempt budget, sleeping exponentially
// between attempts. Retries stop early when ctx is cancelled.
func (a *Acquirer) tryProvider(ctx context.Context, p Provider, op string, attempts int, fn func(context.Context) error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = a.opts.InitialWait
	bo.Multiplier = a.opts.Multiplier
	bo.RandomizationFactor = 0
	bo.MaxElapsedTime = 0 // the attempt cap bounds the loop, not elapsed time

	return backoff.Retry(func() error {
		fetchAttempts.WithLabelValues(p.Name(), op).Inc()
		cctx, cancel := context.WithTimeout(ctx, a.opts.CallTimeout)
		defer cancel()
		if err := fn(cctx); err != nil {
			fetchFailures.WithLabelValues(p.Name(), op).Inc()
			log.Printf("acquirer: %s %s attempt failed: %v", p.Name(), op, err)
			return err
		}
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(attempts-1)), ctx))
}

// fetchOne walks the provider chain for a single-observation operation and
// returns the first observation that survives the validation gate.
func (a *Acquirer) fetchOne(ctx context.Context, op string, fetch func(context.Context, Provider) (*entities.WeatherObservation, error)) (*entities.WeatherObservation, []string, error) {
	var tried []string
	var lastErr error

	for i, p := range a.providers {
		if i > 0 && !a.opts.FallbackEnabled {
			break
		}
		attempts := 1
		if i == 0 {
			attempts = a.opts.MaxAttempts
		}
		tried = append(tried, p.Name())

		var got *entities.WeatherObservation
		err := a.tryProvider(ctx, p, op, attempts, func(cctx context.Context) error {
			obs, err := fetch(cctx, p)
			if err != nil {
				return err
			}
			if obs == nil {
				return errNoData
			}
			got = obs
			return nil
		})
		if err != nil {
			lastErr = err
			continue
		}

		obs := *got
		if a.opts.ValidationEnabled {
			if verr := a.validator.Validate(obs); verr != nil {
				validationDiscards.Inc()
				log.Printf("acquirer: %s %s observation discarded: %v", p.Name(), op, verr)
				lastErr = verr
				continue
			}
			obs = a.validator.Sanitize(obs)
		}
		if i > 0 {
			fallbackUses.Inc()
		}
		return &obs, tried, nil
	}
	return nil, tried, lastErr
}

// fetchList is the slice analogue of fetchOne; fetch must return errNoData
// (via empty result handling in the caller's closure) when nothing usable
// came back, so the chain advances.
func fetchList[T any](ctx context.Context, a *Acquirer, op string, fetch func(context.Context, Provider) ([]T, error)) ([]T, []string, error) {
	var tried []string
	var lastErr error

	for i, p := range a.providers {
		if i > 0 && !a.opts.FallbackEnabled {
			break
		}
		attempts := 1
		if i == 0 {
			attempts = a.opts.MaxAttempts
		}
		tried = append(tried, p.Name())

		var got []T
		err := a.tryProvider(ctx, p, op, attempts, func(cctx context.Context) error {
			items, err := fetch(cctx, p)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				return errNoData
			}
			got = items
			return nil
		})
		if err != nil {
			lastErr = err
			continue
		}
		if i > 0 {
			fallbackUses.Inc()
		}
		return got, tried, nil
	}
	return nil, tried, lastErr
}

// FetchAndStore is the must-succeed entry point: it returns the farm's
// latest observation or an ExternalServiceError naming the exhausted
// provider chain.
func (a *Acquirer) FetchAndStore(ctx context.Context, farm entities.Farm) (*entities.WeatherObservation, error) {
	key := fmt.Sprintf("%d", farm.ID)
	if v, ok := a.latest.get(key); ok {
		cacheHits.Inc()
		return &v, nil
	}
	cacheMisses.Inc()

	obs, tried, err := a.fetchOne(ctx, "current", func(cctx context.Context, p Provider) (*entities.WeatherObservation, error) {
		return p.FetchCurrent(cctx, farm)
	})
	if obs == nil {
		if err == nil {
			err = errNoData
		}
		return nil, &model.ExternalServiceError{Service: "weather-acquirer", Providers: tried, Err: err}
	}

	a.latest.put(key, *obs)
	a.persist(ctx, *obs)
	return obs, nil
}

// FetchCurrent is the read path: same chain as FetchAndStore, but total
// provider failure degrades to no data instead of an error.
func (a *Acquirer) FetchCurrent(ctx context.Context, farm entities.Farm) (*entities.WeatherObservation, error) {
	obs, err := a.FetchAndStore(ctx, farm)
	if err != nil {
		log.Printf("acquirer: current for farm %d degraded to empty: %v", farm.ID, err)
		return nil, nil
	}
	return obs, nil
}

// FetchHistorical returns the observation for one past day, preferring the
// store over the network. Exhaustion returns no data, not an error.
func (a *Acquirer) FetchHistorical(ctx context.Context, farm entities.Farm, date time.Time) (*entities.WeatherObservation, error) {
	if stored, err := a.store.ObservationByDate(ctx, farm.ID, date); err != nil {
		log.Printf("acquirer: store lookup for farm %d: %v", farm.ID, err)
	} else if stored != nil {
		return stored, nil
	}

	obs, tried, err := a.fetchOne(ctx, "historical", func(cctx context.Context, p Provider) (*entities.WeatherObservation, error) {
		return p.FetchHistorical(cctx, farm, date)
	})
	if obs == nil {
		if err != nil {
			log.Printf("acquirer: historical for farm %d exhausted %v: %v", farm.ID, tried, err)
		}
		return nil, nil
	}
	a.persist(ctx, *obs)
	return obs, nil
}

// FetchForecast returns up to days daily observations. Items failing
// validation are dropped individually; a fully-discarded response counts as
// empty and advances the chain. Exhaustion returns an empty slice.
func (a *Acquirer) FetchForecast(ctx context.Context, farm entities.Farm, days int) ([]entities.WeatherObservation, error) {
	key := fmt.Sprintf("%d:%d", farm.ID, days)
	if v, ok := a.forecasts.get(key); ok {
		cacheHits.Inc()
		return v, nil
	}
	cacheMisses.Inc()

	items, tried, err := fetchList(ctx, a, "forecast", func(cctx context.Context, p Provider) ([]entities.WeatherObservation, error) {
		raw, err := p.FetchForecast(cctx, farm, days)
		if err != nil {
			return nil, err
		}
		return a.acceptAll(raw), nil
	})
	if len(items) == 0 {
		if err != nil {
			log.Printf("acquirer: forecast for farm %d exhausted %v: %v", farm.ID, tried, err)
		}
		return []entities.WeatherObservation{}, nil
	}
	if len(items) > days {
		items = items[:days]
	}
	a.forecasts.put(key, items)
	return items, nil
}

// FetchAlerts walks the chain for provider alerts. No caching, no storage.
func (a *Acquirer) FetchAlerts(ctx context.Context, farm entities.Farm) ([]entities.WeatherAlert, error) {
	alerts, tried, err := fetchList(ctx, a, "alerts", func(cctx context.Context, p Provider) ([]entities.WeatherAlert, error) {
		return p.FetchAlerts(cctx, farm)
	})
	if len(alerts) == 0 {
		if err != nil && !errors.Is(err, errNoData) {
			log.Printf("acquirer: alerts for farm %d exhausted %v: %v", farm.ID, tried, err)
		}
		return []entities.WeatherAlert{}, nil
	}
	return alerts, nil
}

// RecentWindow reads the last n days of stored observations for a farm,
// today excluded from the upper bound.
func (a *Acquirer) RecentWindow(ctx context.Context, farmID uint, days int) ([]entities.WeatherObservation, error) {
	now := time.Now().UTC()
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
	from := to.Add(-time.Duration(days) * 24 * time.Hour)
	return a.store.ObservationsBetween(ctx, farmID, from, to)
}

// acceptAll filters a batch through the validation gate.
func (a *Acquirer) acceptAll(raw []entities.WeatherObservation) []entities.WeatherObservation {
	if !a.opts.ValidationEnabled {
		return raw
	}
	out := make([]entities.WeatherObservation, 0, len(raw))
	for _, obs := range raw {
		if err := a.validator.Validate(obs); err != nil {
			validationDiscards.Inc()
			log.Printf("acquirer: forecast item discarded: %v", err)
			continue
		}
		out = append(out, a.validator.Sanitize(obs))
	}
	return out
}

// persist upserts an accepted observation when the (farm, date) slot is
// empty and mirrors it to the telemetry sink.
func (a *Acquirer) persist(ctx context.Context, obs entities.WeatherObservation) {
	existing, err := a.store.ObservationByDate(ctx, obs.FarmID, obs.Day())
	if err != nil {
		log.Printf("acquirer: store lookup before upsert: %v", err)
		return
	}
	if existing != nil {
		return
	}
	if err := a.store.UpsertObservation(ctx, obs); err != nil {
		log.Printf("acquirer: upsert observation farm=%d date=%s: %v", obs.FarmID, obs.Day().Format("2006-01-02"), err)
		return
	}
	if a.sink != nil {
		a.sink.RecordObservation(obs)
	}
}
