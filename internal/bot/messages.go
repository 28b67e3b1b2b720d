package bot

// User-facing texts. The bot speaks Russian; times are shown in both the
// Ukraine and Thailand zones.
const (
	msgGreeting = "Привет! Я бот для просмотра встреч из календаря. Сначала нужно настроить фильтр и уведомления."

	msgFilterIntro = "Выберите вариант фильтра:"
	msgFilterAll   = "Показывать все встречи"
	msgFilterMine  = "Показывать только мои встречи"
	msgFilterSaved = "Настройки фильтра сохранены."

	msgNotificationsIntro = "Выберите, какие уведомления вы хотите получать (можно выбрать несколько):"
	msgNotifications1h    = "Уведомлять за 1 час до встречи"
	msgNotifications15m   = "Уведомлять за 15 минут до встречи"
	msgNotifications5m    = "Уведомлять за 5 минут до встречи"
	msgNotificationsNew   = "Уведомлять о новой встрече"
	msgNotificationsSaved = "Настройки уведомлений сохранены."

	msgYesButton = "Да"
	msgNoButton  = "Нет"

	msgMenu = "Команды:\n" +
		"/start - Начать настройку\n" +
		"/settings_filter - Настройка фильтра\n" +
		"/settings_notifications - Настройка уведомлений\n" +
		"/get_today - Встречи сегодня\n" +
		"/get_tomorrow - Встречи завтра\n" +
		"/get_rest_week - Встречи до субботы\n" +
		"/get_next_week - Встречи на следующей неделе"

	msgSettingsDone = "Настройки завершены. Список доступных команд см. в меню."
	msgNoMeetings   = "Нет встреч по выбранному фильтру."
	msgUnknown      = "Не понял команду. Отправьте /start для настройки."
	msgError        = "Произошла ошибка. Попробуйте позже."

	// Notification envelopes; the details block follows on the next line.
	msgNewMeeting       = "Добавлена новая встреча:\n%s"
	msgBeforeMeeting    = "Напоминание: встреча начнется через %d мин.\n%s"
	msgMeetingsToday    = "Встречи на сегодня (%s):"
	msgMeetingsTomorrow = "Встречи на завтра (%s):"
	msgMeetingsForDay   = "%s %s:"

	lblUkraineTime  = "Время (Украина): %s - %s"
	lblThailandTime = "Время (Таиланд): %s - %s"
	lblAttendants   = "Участники: %s"
	lblLink         = "Ссылка: %s"
	lblLocation     = "Место: %s"
	lblDescription  = "Описание: %s"
)

// weekdayNames are Monday-based, matching the digest grouping.
var weekdayNames = []string{
	"Понедельник", "Вторник", "Среда", "Четверг", "Пятница", "Суббота", "Воскресенье",
}
