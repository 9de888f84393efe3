package notify

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/butchershop/internal/domain/models"
	"github.com/mamadbah2/butchershop/internal/service/templates"
)

// ErrDispatchDisabled is returned by Send when no text sender is configured.
var ErrDispatchDisabled = errors.New("message dispatch is not configured")

type TemplateSource interface {
	Get(id string) (models.EmailTemplate, error)
}

type OrderSource interface {
	GetOrderByID(id string) (models.Order, error)
}

type CustomerSource interface {
	GetCustomerByID(id string) (models.Customer, error)
}

// TextSender delivers a plain text copy of a message to a phone number.
type TextSender interface {
	SendText(ctx context.Context, to, body string) (string, error)
}

// Service composes customer messages from templates. Opening the mail client is left to the caller via MailtoURL.
type Service struct {
	templates TemplateSource
	orders    OrderSource
	customers CustomerSource
	sender    TextSender
	shopName  string
	logger    *zap.Logger
}

// NewService wires the composer. sender may be nil.
func NewService(tpl TemplateSource, orders OrderSource, customers CustomerSource, sender TextSender, shopName string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		templates: tpl,
		orders:    orders,
		customers: customers,
		sender:    sender,
		shopName:  shopName,
		logger:    logger,
	}
}

// Compose renders a template for an order and its customer.
func (s *Service) Compose(ctx context.Context, templateID, orderID string) (models.RenderedMessage, error) {
	tpl, err := s.templates.Get(templateID)
	if err != nil {
		return models.RenderedMessage{}, fmt.Errorf("compose: %w", err)
	}
	order, err := s.orders.GetOrderByID(orderID)
	if err != nil {
		return models.RenderedMessage{}, fmt.Errorf("compose: %w", err)
	}

	customer, err := s.customers.GetCustomerByID(order.CustomerID)
	if err != nil {
		s.logger.Warn("order references a missing customer", zap.String("order_id", orderID), zap.String("customer_id", order.CustomerID))
		customer = models.Customer{FirstName: models.UnknownCustomerName}
	}

	subject, body := templates.Render(tpl, s.variables(order, customer))
	return models.RenderedMessage{
		To:        customer.Email,
		Subject:   subject,
		Body:      body,
		MailtoURL: MailtoURL(customer.Email, subject, body),
	}, nil
}

// Send dispatches a text copy of msg to phone and returns the provider message id.
func (s *Service) Send(ctx context.Context, msg models.RenderedMessage, phone string) (string, error) {
	if s.sender == nil {
		return "", ErrDispatchDisabled
	}
	text := msg.Subject + "\n\n" + msg.Body
	id, err := s.sender.SendText(ctx, phone, text)
	if err != nil {
		s.logger.Error("failed to dispatch notification", zap.Error(err))
		return "", fmt.Errorf("send notification: %w", err)
	}
	s.logger.Info("notification dispatched", zap.String("message_id", id))
	return id, nil
}

func (s *Service) variables(order models.Order, customer models.Customer) templates.Variables {
	collectionTime := order.CollectionTime
	if collectionTime == "" {
		collectionTime = "any time during opening hours"
	}
	return templates.Variables{
		"customerName":   customer.FullName(),
		"firstName":      customer.FirstName,
		"orderId":        order.ID,
		"collectionDate": order.CollectionDate,
		"collectionTime": collectionTime,
		"items":          FormatItems(order.Items),
		"shopName":       s.shopName,
		"notes":          order.AdditionalNotes,
	}
}

// FormatItems renders one "- qty unit description" line per item.
func FormatItems(items []models.OrderItem) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		qty := strconv.FormatFloat(item.Quantity, 'f', -1, 64)
		parts := []string{"-", qty}
		if item.Unit != "" {
			parts = append(parts, item.Unit)
		}
		parts = append(parts, item.Description)
		lines = append(lines, strings.Join(parts, " "))
	}
	return strings.Join(lines, "\n")
}

// MailtoURL builds a mailto link with an escaped subject and body.
func MailtoURL(to, subject, body string) string {
	return "mailto:" + url.PathEscape(to) + "?subject=" + escape(subject) + "&body=" + escape(body)
}

func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
