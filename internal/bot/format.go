package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/gkhcrm/gkhcrm/internal/domain"
)

// Display caps for the grouped ticket listing. Presentation only: the
// underlying fetch is unbounded.
const (
	listCapNew        = 3
	listCapInProgress = 3
	listCapDone       = 2

	commentPreviewLen = 50
)

func welcomeMessage(name string) string {
	return fmt.Sprintf(`👋 Привет, %s!

Я - бот для управления заявками ЖКХ.
С моей помощью вы можете:

✅ Создавать заявки на ремонт
✅ Отслеживать статус заявок
✅ Получать комментарии администратора
✅ Переходить в веб-кабинет

📋 *Доступные команды:*
/new - Создать заявку
/my - Мои заявки
/web - Веб-кабинет
/help - Помощь

💡 *Совет:* Для быстрого создания заявки используйте команду /new`, name)
}

func titlePrompt() string {
	return `📝 *Создание новой заявки*

Шаг 1 из 2: Введите *заголовок* заявки

💡 *Примеры:*
• "Протекает кран на кухне"
• "Не работает лифт в подъезде 2"
• "Требуется замена лампочки на 3 этаже"

❌ Для отмены отправьте "отмена"`
}

func descriptionPrompt() string {
	return `📝 *Создание новой заявки*

Шаг 2 из 2: Введите *описание* проблемы

💡 *Что указать в описании:*
• Подробное описание проблемы
• Адрес (квартира, подъезд, этаж)
• Когда началась проблема

❌ Для отмены отправьте "отмена"`
}

func successMessage(ticket *domain.Ticket) string {
	number := strings.ToUpper(ticket.ID.String())
	if len(number) > 8 {
		number = number[:8]
	}

	return fmt.Sprintf(`✅ *Заявка успешно создана!*

📋 *Детали заявки:*
🔸 Номер: %s
🔸 Заголовок: %s
🔸 Статус: Новая
🔸 Дата: %s

👷 *Что дальше:*
• Администратор получит уведомление
• Статус будет меняться по мере работы

📊 *Для отслеживания статуса:*
• Используйте команду /my
• Или откройте веб-кабинет /web`, number, ticket.Title, ticket.CreatedAt.Format("02.01.2006"))
}

// ticketListMessage renders the /my summary: tickets grouped into three
// buckets, each truncated to its display cap with an overflow line.
// WAITING tickets are not surfaced separately here.
func ticketListMessage(tickets []domain.Ticket) string {
	var newTickets, inProgress, done []domain.Ticket
	for _, t := range tickets {
		switch t.Status {
		case domain.StatusNew:
			newTickets = append(newTickets, t)
		case domain.StatusInProgress:
			inProgress = append(inProgress, t)
		case domain.StatusDone:
			done = append(done, t)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 *Ваши заявки* (всего: %d)\n\n", len(tickets))

	if len(newTickets) > 0 {
		fmt.Fprintf(&b, "🟢 *Новые (%d):*\n", len(newTickets))
		writeBucket(&b, newTickets, listCapNew, false)
		b.WriteString("\n")
	}

	if len(inProgress) > 0 {
		fmt.Fprintf(&b, "🟡 *В работе (%d):*\n", len(inProgress))
		writeBucket(&b, inProgress, listCapInProgress, true)
		b.WriteString("\n")
	}

	if len(done) > 0 {
		fmt.Fprintf(&b, "✅ *Завершены (%d):*\n", len(done))
		writeBucket(&b, done, listCapDone, false)
	}

	b.WriteString("\n---\n")
	b.WriteString("📱 *Управление заявками:*\n")
	b.WriteString("• Для деталей откройте веб-кабинет /web\n")
	b.WriteString("• Создать новую заявку /new\n")
	b.WriteString("• Обновить список - отправьте /my\n")

	return b.String()
}

func writeBucket(b *strings.Builder, tickets []domain.Ticket, limit int, withComment bool) {
	shown := tickets
	if len(shown) > limit {
		shown = shown[:limit]
	}
	for i, t := range shown {
		fmt.Fprintf(b, "%d. %s", i+1, t.Title)
		if withComment && t.Comment != nil && *t.Comment != "" {
			fmt.Fprintf(b, "\n   💬 %s...", previewComment(*t.Comment))
		}
		b.WriteString("\n")
	}
	if len(tickets) > limit {
		fmt.Fprintf(b, "... и еще %d\n", len(tickets)-limit)
	}
}

func previewComment(comment string) string {
	runes := []rune(comment)
	if len(runes) > commentPreviewLen {
		return string(runes[:commentPreviewLen])
	}
	return comment
}

func webMessage(url string) string {
	return fmt.Sprintf(`🌐 *Ваш веб-кабинет*

Откройте эту ссылку в браузере:
%s

📱 *Что доступно в веб-кабинете:*
• Подробный просмотр заявок
• История обращений
• Статусы в реальном времени
• Комментарии администратора`, url)
}

func helpMessage() string {
	return `🆘 *Помощь по боту CRM ЖКХ*

📋 *Основные команды:*
/start - Начать работу с ботом
/new - Создать новую заявку
/my - Просмотреть мои заявки
/web - Открыть веб-кабинет
/help - Эта справка
/status - Статус системы

📝 *Создание заявки:*
1. Нажмите "Создать заявку" или отправьте /new
2. Введите заголовок заявки
3. Подробно опишите проблему
4. Заявка будет отправлена администратору

📊 *Просмотр заявок:*
• Используйте команду /my
• Статусы: Новая, В работе, Завершена
• Администратор оставляет комментарии

📞 *Поддержка:*
Если возникли проблемы, обратитесь к администратору системы.`
}

func statusMessage(apiUp bool, totalTickets, activeSessions int) string {
	var b strings.Builder
	b.WriteString("🟢 *Статус системы*\n\n")
	b.WriteString("✅ Бот работает нормально\n")
	if apiUp {
		b.WriteString("✅ API сервер доступен\n")
		fmt.Fprintf(&b, "✅ Заявок в системе: %d\n", totalTickets)
	} else {
		b.WriteString("❌ API сервер недоступен\n")
	}
	fmt.Fprintf(&b, "\n📊 *Статистика:*\nПользователей в сессии: %d\n", activeSessions)
	fmt.Fprintf(&b, "\n🕐 Время сервера: %s\n", time.Now().Format("02.01.2006 15:04:05"))
	if apiUp {
		b.WriteString("\n💡 Все системы работают в штатном режиме.")
	} else {
		b.WriteString("\n💡 Проверьте запущен ли основной проект.")
	}
	return b.String()
}
