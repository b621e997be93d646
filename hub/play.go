package hub

import (
	"arcade/domain"
	"arcade/metrics"
	"arcade/route"
	"arcade/whack"
	"context"
	"errors"
	"sync"
)

// play binds one game session to one connection.
type play interface {
	handle(ctx context.Context, msg inbound)
	close()
}

// publisher forwards snapshots in Seq order and counts phase transitions.
// Sessions emit outside their lock, so two emissions can race; the older
// one is dropped.
type publisher struct {
	mu      sync.Mutex
	game    domain.GameType
	client  *client
	metrics *metrics.Metrics
	lastSeq uint64
	phase   domain.Phase
}

func (p *publisher) publish(seq uint64, phase domain.Phase, snap any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if seq <= p.lastSeq {
		return
	}
	p.lastSeq = seq

	if phase != p.phase {
		switch {
		case phase == domain.PHASE_RUNNING:
			p.metrics.SessionStarted(string(p.game))
		case p.phase == domain.PHASE_RUNNING && phase == domain.PHASE_ENDED:
			p.metrics.SessionEnded(string(p.game))
		}
		p.phase = phase
	}

	p.client.send(MsgSnapshot, snap)
}

type whackPlay struct {
	session *whack.Session
	client  *client
	metrics *metrics.Metrics
}

func newWhackPlay(c *client, cfg whack.Config, catalog []domain.EntityTypeDef, opts whack.Options, m *metrics.Metrics) *whackPlay {
	pub := &publisher{game: domain.GameWhack, client: c, metrics: m}
	opts.UserID = c.userID
	opts.OnChange = func(s whack.Snapshot) { pub.publish(s.Seq, s.Phase, s) }
	return &whackPlay{
		session: whack.NewSession(cfg, catalog, opts),
		client:  c,
		metrics: m,
	}
}

func (w *whackPlay) handle(ctx context.Context, msg inbound) {
	switch msg.Type {
	case CmdStart:
		if err := w.session.Start(); err != nil {
			w.client.sendError(errorCode(err))
		}

	case CmdRestart:
		if err := w.session.Restart(); err != nil {
			w.client.sendError(errorCode(err))
		}

	case CmdEnd:
		result, ok := w.session.End()
		if !ok {
			w.client.sendError(errorCode(domain.ErrSessionNotRunning))
			return
		}
		w.client.send(MsgResult, result)

	case CmdWhack:
		var p whackPayload
		if err := decodePayload(msg, &p); err != nil {
			w.client.sendError(ErrBadMessageFormatStr)
			return
		}
		hit, ok := w.session.Whack(p.InstanceID)
		if !ok {
			return
		}
		w.metrics.Hit(string(hit.Category))
		w.client.send(MsgHit, hit)

	default:
		w.client.sendError(ErrUnknownCommandStr)
	}
}

func (w *whackPlay) close() {
	w.session.Close()
}

type routePlay struct {
	session *route.Session
	client  *client
	wg      sync.WaitGroup
}

func newRoutePlay(c *client, difficulty domain.Difficulty, graph domain.StationGraph, opts route.Options, m *metrics.Metrics) *routePlay {
	pub := &publisher{game: domain.GameMetro, client: c, metrics: m}
	opts.UserID = c.userID
	opts.OnChange = func(s route.Snapshot) { pub.publish(s.Seq, s.Phase, s) }
	return &routePlay{
		session: route.NewSession(difficulty, graph, opts),
		client:  c,
	}
}

func (r *routePlay) handle(ctx context.Context, msg inbound) {
	switch msg.Type {
	case CmdStart:
		if err := r.session.Start(); err != nil {
			r.client.sendError(errorCode(err))
		}

	case CmdRestart:
		if err := r.session.Restart(); err != nil {
			r.client.sendError(errorCode(err))
		}

	case CmdSelect:
		var p selectPayload
		if err := decodePayload(msg, &p); err != nil {
			r.client.sendError(ErrBadMessageFormatStr)
			return
		}
		if err := r.session.SelectStation(p.StationID); err != nil {
			r.client.sendError(errorCode(err))
		}

	case CmdSubmit:
		r.submit(func() (domain.EvaluationResult, error) {
			return r.session.Submit(ctx)
		})

	case CmdSubmitByName:
		var p submitByNamePayload
		if err := decodePayload(msg, &p); err != nil {
			r.client.sendError(ErrBadMessageFormatStr)
			return
		}
		r.submit(func() (domain.EvaluationResult, error) {
			return r.session.SubmitByName(ctx, p.From, p.To)
		})

	default:
		r.client.sendError(ErrUnknownCommandStr)
	}
}

// submit runs the evaluation off the read loop so restart and close stay
// responsive while it is in flight.
func (r *routePlay) submit(f func() (domain.EvaluationResult, error)) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		result, err := f()
		switch {
		case errors.Is(err, domain.ErrStaleEvaluation):
		case err != nil:
			r.client.sendError(errorCode(err))
		default:
			r.client.send(MsgResult, result)
		}
	}()
}

func (r *routePlay) close() {
	r.session.Close()
	r.wg.Wait()
}
