package rabbitmq

import (
	"context"
	"time"

	"github.com/oksasatya/campus-resource-tracker/config"
	"github.com/oksasatya/campus-resource-tracker/internal/application"
	"github.com/oksasatya/campus-resource-tracker/internal/domain/entity"
	"github.com/oksasatya/campus-resource-tracker/pkg/mailer"
	tpl "github.com/oksasatya/campus-resource-tracker/pkg/mailer/templates"
)

// Publisher is the part of helpers.RabbitPublisher the notifier needs.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Notifier turns domain events into email jobs on the queue consumed by
// cmd/email_worker.
type Notifier struct {
	pub Publisher
	cfg *config.Config
	now func() time.Time
}

func NewNotifier(pub Publisher, cfg *config.Config) *Notifier {
	return &Notifier{pub: pub, cfg: cfg, now: time.Now}
}

func (n *Notifier) publish(ctx context.Context, job mailer.EmailJob) error {
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return n.pub.PublishJSON(c, job)
}

func (n *Notifier) Welcome(ctx context.Context, u *entity.User) error {
	data := tpl.NewWelcomeData(n.cfg, u.Username, u.Email, tpl.WithTime(n.now()))
	return n.publish(ctx, mailer.EmailJob{To: u.Email, Template: tpl.Welcome, Data: data})
}

func (n *Notifier) ResourceRated(ctx context.Context, ev application.RatedNotice) error {
	r := ev.Resource
	data := tpl.NewResourceRatedData(n.cfg, ev.Owner.Username, ev.Owner.Email,
		tpl.WithTime(n.now()),
		tpl.WithResource(r.ID, r.Name, string(r.Type), r.Building),
		tpl.WithRating(ev.RaterName, ev.Score, ev.Comment),
		tpl.WithAggregate(r.AverageRating, r.RatingCount),
	)
	return n.publish(ctx, mailer.EmailJob{To: ev.Owner.Email, Template: tpl.ResourceRated, Data: data})
}

var _ application.Notifier = (*Notifier)(nil)
