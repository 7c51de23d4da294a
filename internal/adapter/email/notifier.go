package email

import (
	"context"
	"os"

	"github-report-mailer/internal/common"
	"github-report-mailer/internal/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

const mailBody = "附件是GitHub项目分析报告，请查收。"

// Notifier 实现了 port.Notifier 接口
// 通过 SSL 的 SMTP 提交端口把报告文件作为附件发出去
type Notifier struct {
	cfg config.Email
	log *logrus.Logger
}

// NewNotifier 创建邮件信使
func NewNotifier(cfg config.Email, log *logrus.Logger) *Notifier {
	return &Notifier{cfg: cfg, log: log}
}

// buildMessage 组装一封带附件的邮件
func (n *Notifier) buildMessage(attachmentPath string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.SenderEmail)
	m.SetHeader("To", n.cfg.Recipients...)
	m.SetHeader("Subject", n.cfg.Subject)
	m.SetBody("text/plain", mailBody)
	m.Attach(attachmentPath)
	return m
}

// Notify 把报告发给全部收件人
// 认证失败或连接被拒绝都映射为投递错误，报告文件保留在磁盘上
func (n *Notifier) Notify(ctx context.Context, attachmentPath string) error {
	if err := ctx.Err(); err != nil {
		return common.WrapError(common.ErrCodeDelivery, "发送前运行已被取消", err)
	}

	if _, err := os.Stat(attachmentPath); err != nil {
		return common.WrapError(common.ErrCodeDelivery, "报告附件不存在", err)
	}

	n.log.Infof("📤 准备发送邮件 | 收件人: %v", n.cfg.Recipients)

	msg := n.buildMessage(attachmentPath)

	dialer := gomail.NewDialer(n.cfg.SMTPServer, n.cfg.SMTPPort, n.cfg.SenderEmail, n.cfg.Password)
	dialer.SSL = true

	if err := dialer.DialAndSend(msg); err != nil {
		return common.WrapError(common.ErrCodeDelivery, "邮件发送失败", err)
	}

	n.log.Info("🎉 邮件发送成功 | 状态: 已送达")
	return nil
}
