package tui

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"pdfcompress/internal/domain/entities"
	"pdfcompress/internal/domain/repositories"
	"pdfcompress/internal/interface/controllers"
	"pdfcompress/internal/presentation/components"
)

// UI Configuration constants
const (
	MaxLogBufferSize   = 1000
	LogFlushInterval   = 50 * time.Millisecond
	ProgressViewHeight = 12
	NotificationHeight = 7
)

// Screen экран интерфейса
type Screen int

const (
	ScreenMenu Screen = iota
	ScreenCompress
	ScreenSettings
	ScreenFiles
	ScreenConvert
)

var screenPages = map[Screen]string{
	ScreenMenu:     "menu",
	ScreenCompress: "compress",
	ScreenSettings: "settings",
	ScreenFiles:    "files",
	ScreenConvert:  "convert",
}

// Registrar слой интеграции, наблюдающий за подключением компонентов
type Registrar interface {
	Register(c controllers.Component) bool
	Unregister(c controllers.Component) bool
}

// HandleLoader читает файл с диска
type HandleLoader interface {
	LoadHandle(path string) (*entities.FileHandle, error)
}

// mountable компонент с разметкой и сигналом перерисовки
type mountable interface {
	controllers.Component
	Render() string
	OnChange(fn func())
}

// Manager управляет TUI интерфейсом: создает компоненты, подключает их к
// слою интеграции и перерисовывает их представления
type Manager struct {
	app           *tview.Application
	pages         *tview.Pages
	currentScreen Screen

	cfg       *entities.Config
	providers []string
	registrar Registrar
	loader    HandleLoader
	mounted   []mountable

	// Компоненты
	uploader  *components.Uploader
	bulk      *components.Uploader
	progress  *components.ProgressTracker
	results   *components.ResultsDisplay
	settings  *components.SettingsPanel
	notes     *components.Notifications
	localFM   *components.FileManager
	cloudFM   *components.FileManager
	converter *components.ImageConverter

	// UI компоненты
	mainMenu     *tview.List
	uploadView   *tview.TextView
	progressView *tview.TextView
	resultsView  *tview.TextView
	notesView    *tview.TextView
	settingsView *tview.TextView
	settingsForm *tview.Form
	filesView    *tview.TextView
	filesList    *tview.List
	convertView  *tview.TextView
	logView      *tview.TextView
	pathInput    *tview.InputField
	imageInput   *tview.InputField
	searchInput  *tview.InputField
	activeFiles  *components.FileManager
	syncingForm  bool
	statusMutex  sync.RWMutex
	logBuffer    []string
	logChan      chan string
	logDone      chan struct{}
	logMutex     sync.Mutex
}

// NewManager создает новый менеджер TUI
func NewManager(cfg *entities.Config) *Manager {
	m := &Manager{
		app:       tview.NewApplication(),
		pages:     tview.NewPages(),
		cfg:       cfg,
		logBuffer: make([]string, 0, MaxLogBufferSize),
		logChan:   make(chan string, 100),
		logDone:   make(chan struct{}),
	}
	go m.logProcessor()
	return m
}

// Initialize создает компоненты, подключает их к слою интеграции и строит
// экраны. providers перечисляет доступных облачных провайдеров.
func (m *Manager) Initialize(bus repositories.EventPublisher, registrar Registrar, loader HandleLoader, providers []string, logger repositories.Logger) {
	m.registrar = registrar
	m.loader = loader
	m.providers = providers

	m.uploader = components.NewUploader(m.cfg.Limits, bus, logger)
	m.bulk = components.NewBulkUploader(m.cfg.Limits, bus, logger)
	m.progress = components.NewProgressTracker(bus, logger)
	m.results = components.NewResultsDisplay(bus, logger)
	m.settings = components.NewSettingsPanel(m.cfg.UI.SettingsDebounce, bus, logger)
	m.notes = components.NewNotifications(m.cfg.UI, bus, logger)
	m.localFM = components.NewFileManager(entities.SourceLocal, bus, logger)
	m.cloudFM = components.NewFileManager(entities.SourceCloud, bus, logger)
	m.converter = components.NewImageConverter(m.cfg.Compression.ImageQuality, bus, logger)
	m.activeFiles = m.localFM

	m.createUI()
	m.setupKeyBindings()

	m.mount(m.uploader, m.uploadView, m.uploadText)
	m.mount(m.bulk, m.uploadView, m.uploadText)
	m.mount(m.progress, m.progressView, nil)
	m.mount(m.results, m.resultsView, nil)
	m.mount(m.settings, m.settingsView, nil)
	m.mount(m.notes, m.notesView, nil)
	m.mount(m.localFM, m.filesView, m.filesText)
	m.mount(m.cloudFM, m.filesView, m.filesText)
	m.mount(m.converter, m.convertView, nil)

	m.settings.OnChange(m.redraw(m.settingsView, m.settings.Render, m.refreshSettingsForm))
	m.localFM.OnChange(m.redraw(m.filesView, m.filesText, m.refreshFilesList))
	m.cloudFM.OnChange(m.redraw(m.filesView, m.filesText, m.refreshFilesList))
}

// Run запускает TUI
func (m *Manager) Run() error {
	return m.app.SetRoot(m.pages, true).EnableMouse(true).Run()
}

// mount регистрирует компонент и связывает его перерисовку с представлением.
// text задает разметку представления, по умолчанию Render компонента.
func (m *Manager) mount(c mountable, view *tview.TextView, text func() string) {
	if text == nil {
		text = c.Render
	}
	c.OnChange(m.redraw(view, text, nil))
	view.SetText(text())

	if m.registrar != nil && m.registrar.Register(c) {
		m.mounted = append(m.mounted, c)
	}
}

// redraw возвращает обработчик изменения компонента. Обработчик может
// вызываться из любой горутины.
func (m *Manager) redraw(view *tview.TextView, text func() string, after func()) func() {
	return func() {
		content := text()
		m.app.QueueUpdateDraw(func() {
			view.SetText(content)
			if after != nil {
				after()
			}
		})
	}
}

// unmountAll отключает компоненты от слоя интеграции
func (m *Manager) unmountAll() {
	for _, c := range m.mounted {
		c.OnChange(nil)
		if m.registrar != nil {
			m.registrar.Unregister(c)
		}
	}
	m.mounted = nil
}

// activeUploader загрузчик текущего режима
func (m *Manager) activeUploader() *components.Uploader {
	if m.settings.Mode() == entities.ModeBulk {
		return m.bulk
	}
	return m.uploader
}

func (m *Manager) uploadText() string {
	u := m.activeUploader()
	if !u.Visible() {
		return ""
	}
	return u.Render()
}

func (m *Manager) filesText() string {
	return m.activeFiles.Render()
}

// createUI создает пользовательский интерфейс
func (m *Manager) createUI() {
	m.createMainMenu()
	m.createCompressScreen()
	m.createSettingsScreen()
	m.createFilesScreen()
	m.createConvertScreen()

	m.notesView = m.textView("🔔 Уведомления (Ctrl+T - действие, Ctrl+D - закрыть все)")

	m.pages.AddPage(screenPages[ScreenMenu], m.mainMenu, true, true)
	m.pages.AddPage(screenPages[ScreenCompress], m.withNotifications(m.compressLayout()), true, false)
	m.pages.AddPage(screenPages[ScreenSettings], m.withNotifications(m.settingsLayout()), true, false)
	m.pages.AddPage(screenPages[ScreenFiles], m.withNotifications(m.filesLayout()), true, false)
	m.pages.AddPage(screenPages[ScreenConvert], m.withNotifications(m.convertLayout()), true, false)

	m.currentScreen = ScreenMenu
}

func (m *Manager) textView(title string) *tview.TextView {
	v := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	v.SetBorder(true).
		SetTitle(title).
		SetTitleAlign(tview.AlignCenter)
	return v
}

func (m *Manager) withNotifications(p tview.Primitive) *tview.Flex {
	return tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(p, 0, 1, true).
		AddItem(m.notesView, NotificationHeight, 0, false)
}

// createMainMenu создает главное меню
func (m *Manager) createMainMenu() {
	m.mainMenu = tview.NewList().
		AddItem("🚀 Сжатие PDF", "Выбрать файлы и сжать их", '1', func() {
			m.switchToScreen(ScreenCompress)
		}).
		AddItem("⚙️ Настройки", "Уровень, качество, стратегия, режим", '2', func() {
			m.switchToScreen(ScreenSettings)
		}).
		AddItem("🗂 Файлы", "Сохраненные и облачные файлы", '3', func() {
			m.switchToScreen(ScreenFiles)
		}).
		AddItem("🖼 Изображения в PDF", "Собрать PDF из JPEG и PNG", '4', func() {
			m.switchToScreen(ScreenConvert)
		}).
		AddItem("❌ Выход", "Закрыть приложение", 'q', func() {
			m.Cleanup()
			m.app.Stop()
		})

	m.mainMenu.SetBorder(true).
		SetTitle("🔥 PDF Compressor - Главное меню").
		SetTitleAlign(tview.AlignCenter)

	m.mainMenu.SetSelectedBackgroundColor(tcell.ColorDarkBlue).
		SetSelectedTextColor(tcell.ColorWhite).
		SetMainTextColor(tcell.ColorWhite).
		SetSecondaryTextColor(tcell.ColorGray)
}

// createCompressScreen создает экран сжатия
func (m *Manager) createCompressScreen() {
	m.uploadView = m.textView("📄 Выбор файлов (Ctrl+S - начать)")
	m.progressView = m.textView("📊 Прогресс обработки")
	m.resultsView = m.textView("📦 Результаты (Tab - переключить фокус)")
	m.logView = m.textView("📋 Журнал событий")
	m.logView.SetMaxLines(MaxLogBufferSize)

	m.pathInput = tview.NewInputField().
		SetLabel("Путь к PDF: ").
		SetFieldWidth(0)
	m.pathInput.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		path := strings.TrimSpace(m.pathInput.GetText())
		if path == "" {
			return
		}
		m.pathInput.SetText("")
		m.addPath(path)
	})

	m.resultsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch r := event.Rune(); {
		case r == 'a' || r == 'A':
			m.results.DownloadAll()
		case r == 'r' || r == 'R':
			m.results.Retry()
		case r == 'n' || r == 'N':
			m.results.NewFile()
		case r == 'u' || r == 'U':
			m.uploadAllToCloud()
		case r >= '1' && r <= '9':
			m.results.Download(int(r - '1'))
		default:
			return event
		}
		return nil
	})
}

func (m *Manager) compressLayout() *tview.Flex {
	top := tview.NewFlex().
		AddItem(m.uploadView, 0, 1, false).
		AddItem(m.resultsView, 0, 1, false)
	return tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(top, 0, 2, false).
		AddItem(m.progressView, ProgressViewHeight, 0, false).
		AddItem(m.logView, 0, 1, false).
		AddItem(m.pathInput, 1, 0, true)
}

// addPath читает файл и передает его загрузчику текущего режима
func (m *Manager) addPath(path string) {
	handle, err := m.loader.LoadHandle(path)
	if err != nil {
		m.notes.Notify(entities.Notification{Variant: entities.NotifyError, Title: "Не удалось открыть файл", Message: err.Error()})
		return
	}
	m.activeUploader().Drop([]*entities.FileHandle{handle})
}

// uploadAllToCloud загружает успешные результаты к первому провайдеру
func (m *Manager) uploadAllToCloud() {
	if len(m.providers) == 0 {
		m.notes.Notify(entities.Notification{Variant: entities.NotifyWarning, Title: "Облако не настроено"})
		return
	}
	for _, item := range m.results.Model().Items {
		m.results.UploadToCloud(item.Index, m.providers[0])
	}
}

// createSettingsScreen создает экран настроек. Форма передает ввод панели
// настроек, итоговые значения показываются после проверки тарифа.
func (m *Manager) createSettingsScreen() {
	m.settingsView = m.textView("⚙️ Текущие настройки")

	levels := make([]string, len(components.LevelOptions))
	for i, l := range components.LevelOptions {
		levels[i] = string(l)
	}
	strategies := make([]string, len(components.StrategyOptions))
	for i, s := range components.StrategyOptions {
		strategies[i] = string(s)
	}
	targets := make([]string, len(components.TargetOptions))
	for i, t := range components.TargetOptions {
		targets[i] = string(t)
	}

	m.settingsForm = tview.NewForm().
		AddDropDown("Уровень сжатия", levels, 0, func(option string, _ int) {
			if !m.syncingForm {
				m.settings.SelectLevel(entities.CompressionLevel(option))
			}
		}).
		AddInputField("Качество изображений (10-100)", "", 10, tview.InputFieldInteger, func(text string) {
			if quality, err := strconv.Atoi(text); err == nil && !m.syncingForm {
				m.settings.SelectImageQuality(quality)
			}
		}).
		AddDropDown("Стратегия", strategies, 0, func(option string, _ int) {
			if !m.syncingForm {
				m.settings.SelectStrategy(entities.OptimizationStrategy(option))
			}
		}).
		AddDropDown("Целевой размер", targets, 0, func(option string, _ int) {
			if !m.syncingForm {
				m.settings.SelectTargetSize(entities.TargetSize(option))
			}
		}).
		AddCheckbox("Серверная обработка (pro)", false, func(checked bool) {
			if !m.syncingForm {
				m.settings.ToggleServerProcessing(checked)
			}
		}).
		AddDropDown("Режим (bulk - pro)", []string{string(entities.ModeSingle), string(entities.ModeBulk)}, 0, func(option string, _ int) {
			if !m.syncingForm && entities.ProcessingMode(option) != m.settings.Mode() {
				m.settings.ToggleMode(entities.ProcessingMode(option))
			}
		}).
		AddButton("Применить", func() {
			m.settings.Flush()
		})

	m.settingsForm.SetBorder(true).
		SetTitle("⚙️ Настройки сжатия (ESC - меню)").
		SetTitleAlign(tview.AlignCenter)
}

func (m *Manager) settingsLayout() *tview.Flex {
	return tview.NewFlex().
		AddItem(m.settingsForm, 0, 2, true).
		AddItem(m.settingsView, 0, 1, false)
}

// refreshSettingsForm синхронизирует форму с панелью настроек. Вызывается в
// горутине интерфейса.
func (m *Manager) refreshSettingsForm() {
	if m.settingsForm == nil {
		return
	}
	m.syncingForm = true
	defer func() { m.syncingForm = false }()

	s := m.settings.GetSettings()
	// 0: Уровень сжатия (DropDown)
	if item, ok := m.settingsForm.GetFormItem(0).(*tview.DropDown); ok {
		item.SetCurrentOption(indexOf(components.LevelOptions, s.CompressionLevel))
	}
	// 1: Качество изображений (Input)
	if item, ok := m.settingsForm.GetFormItem(1).(*tview.InputField); ok {
		item.SetText(strconv.Itoa(s.ImageQuality))
	}
	// 2: Стратегия (DropDown)
	if item, ok := m.settingsForm.GetFormItem(2).(*tview.DropDown); ok {
		item.SetCurrentOption(indexOf(components.StrategyOptions, s.OptimizationStrategy))
	}
	// 3: Целевой размер (DropDown)
	if item, ok := m.settingsForm.GetFormItem(3).(*tview.DropDown); ok {
		item.SetCurrentOption(indexOf(components.TargetOptions, s.TargetSize))
	}
	// 4: Серверная обработка (Checkbox)
	if item, ok := m.settingsForm.GetFormItem(4).(*tview.Checkbox); ok {
		item.SetChecked(s.UseServerProcessing)
	}
	// 5: Режим (DropDown)
	if item, ok := m.settingsForm.GetFormItem(5).(*tview.DropDown); ok {
		mode := 0
		if m.settings.Mode() == entities.ModeBulk {
			mode = 1
		}
		item.SetCurrentOption(mode)
	}

	if m.uploadView != nil {
		m.uploadView.SetText(m.uploadText())
	}
}

func indexOf[T comparable](options []T, value T) int {
	for i, o := range options {
		if o == value {
			return i
		}
	}
	return 0
}

// createFilesScreen создает экран сохраненных файлов
func (m *Manager) createFilesScreen() {
	m.filesView = m.textView("🗂 Файлы")
	m.filesList = tview.NewList().ShowSecondaryText(false)
	m.filesList.SetBorder(true).
		SetTitle("Enter - в загрузку, Del - удалить, Ctrl+L - источник, Ctrl+O - подключить облако").
		SetTitleAlign(tview.AlignCenter)

	m.searchInput = tview.NewInputField().
		SetLabel("Поиск: ").
		SetFieldWidth(0).
		SetChangedFunc(func(text string) {
			m.activeFiles.Search(text)
		})

	m.filesList.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() != tcell.KeyDelete {
			return event
		}
		if id := m.selectedFileID(); id != "" {
			m.activeFiles.Delete(id)
		}
		return nil
	})
}

func (m *Manager) filesLayout() *tview.Flex {
	return tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(m.searchInput, 1, 0, false).
		AddItem(tview.NewFlex().
			AddItem(m.filesList, 0, 2, true).
			AddItem(m.filesView, 0, 1, false), 0, 1, true)
}

// refreshFilesList перестраивает список по текущему представлению файлового
// менеджера. Вызывается в горутине интерфейса.
func (m *Manager) refreshFilesList() {
	if m.filesList == nil {
		return
	}
	current := m.filesList.GetCurrentItem()
	m.filesList.Clear()
	for _, r := range m.activeFiles.View() {
		id := r.ID
		m.filesList.AddItem(fmt.Sprintf("%s (%s)", r.Name, r.Source), id, 0, func() {
			m.activeFiles.Download(id)
		})
	}
	if current < m.filesList.GetItemCount() {
		m.filesList.SetCurrentItem(current)
	}
}

func (m *Manager) selectedFileID() string {
	if m.filesList.GetItemCount() == 0 {
		return ""
	}
	_, id := m.filesList.GetItemText(m.filesList.GetCurrentItem())
	return id
}

// toggleFileSource переключает локальный и облачный список
func (m *Manager) toggleFileSource() {
	if m.activeFiles == m.localFM {
		m.activeFiles = m.cloudFM
	} else {
		m.activeFiles = m.localFM
	}
	m.searchInput.SetText("")
	m.filesView.SetText(m.filesText())
	m.refreshFilesList()
	m.activeFiles.Refresh()
}

// createConvertScreen создает экран конвертации изображений
func (m *Manager) createConvertScreen() {
	m.convertView = m.textView("🖼 Изображения в PDF (Ctrl+S - собрать PDF)")
	m.imageInput = tview.NewInputField().
		SetLabel("Путь к изображению: ").
		SetFieldWidth(0)
	m.imageInput.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		path := strings.TrimSpace(m.imageInput.GetText())
		if path == "" {
			return
		}
		m.imageInput.SetText("")
		handle, err := m.loader.LoadHandle(path)
		if err != nil {
			m.notes.Notify(entities.Notification{Variant: entities.NotifyError, Title: "Не удалось открыть файл", Message: err.Error()})
			return
		}
		for _, r := range m.converter.AddImages([]*entities.FileHandle{handle}) {
			m.notes.Notify(entities.Notification{Variant: entities.NotifyWarning, Title: "Изображение не добавлено", Message: r.Name})
		}
	})
}

func (m *Manager) convertLayout() *tview.Flex {
	return tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(m.convertView, 0, 1, false).
		AddItem(m.imageInput, 1, 0, true)
}

// setupKeyBindings настраивает горячие клавиши
func (m *Manager) setupKeyBindings() {
	m.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF1:
			m.switchToScreen(ScreenMenu)
			return nil
		case tcell.KeyF2:
			m.switchToScreen(ScreenCompress)
			return nil
		case tcell.KeyF3:
			m.switchToScreen(ScreenSettings)
			return nil
		case tcell.KeyF4:
			m.switchToScreen(ScreenFiles)
			return nil
		case tcell.KeyF5:
			m.switchToScreen(ScreenConvert)
			return nil
		case tcell.KeyCtrlX:
			m.progress.Cancel()
			return nil
		case tcell.KeyCtrlT:
			m.triggerLatestAction()
			return nil
		case tcell.KeyCtrlD:
			m.notes.DismissAll()
			return nil
		case tcell.KeyCtrlS:
			switch m.currentScreen {
			case ScreenCompress:
				m.activeUploader().Start()
			case ScreenConvert:
				m.converter.Convert()
			}
			return nil
		case tcell.KeyCtrlL:
			if m.currentScreen == ScreenFiles {
				m.toggleFileSource()
				return nil
			}
		case tcell.KeyCtrlO:
			if m.currentScreen == ScreenFiles && len(m.providers) > 0 {
				m.cloudFM.Connect(m.providers[0])
				return nil
			}
		case tcell.KeyTab:
			if m.currentScreen == ScreenCompress {
				if m.pathInput.HasFocus() {
					m.app.SetFocus(m.resultsView)
				} else {
					m.app.SetFocus(m.pathInput)
				}
				return nil
			}
		case tcell.KeyEscape:
			if m.currentScreen != ScreenMenu {
				m.switchToScreen(ScreenMenu)
				return nil
			}
		}

		if m.currentScreen == ScreenMenu {
			switch event.Rune() {
			case 'q', 'Q':
				m.Cleanup()
				m.app.Stop()
				return nil
			}
		}

		return event
	})
}

// triggerLatestAction выполняет первое действие последнего уведомления с действиями
func (m *Manager) triggerLatestAction() {
	visible := m.notes.Visible()
	for i := len(visible) - 1; i >= 0; i-- {
		if len(visible[i].Actions) > 0 {
			m.notes.Trigger(visible[i].ID, visible[i].Actions[0].ID)
			return
		}
	}
}

// switchToScreen переключает на указанный экран
func (m *Manager) switchToScreen(screen Screen) {
	m.statusMutex.Lock()
	m.currentScreen = screen
	m.statusMutex.Unlock()

	m.pages.SwitchToPage(screenPages[screen])
	switch screen {
	case ScreenSettings:
		m.refreshSettingsForm()
	case ScreenFiles:
		m.activeFiles.Refresh()
	case ScreenCompress:
		m.uploadView.SetText(m.uploadText())
		m.app.SetFocus(m.pathInput)
	}
}

// AddLog добавляет запись в лог через канал (неблокирующе)
func (m *Manager) AddLog(level, message string) {
	var color string
	switch strings.ToLower(level) {
	case "error":
		color = "red"
	case "warning":
		color = "yellow"
	case "success":
		color = "green"
	case "debug":
		color = "gray"
	default:
		color = "white"
	}

	logLine := fmt.Sprintf("[%s]%s:[white] %s", color, strings.ToUpper(level), tview.Escape(message))

	// Неблокирующая отправка в канал
	select {
	case m.logChan <- logLine:
	default:
	}
}

// logProcessor обрабатывает логи в отдельной горутине с батчингом
func (m *Manager) logProcessor() {
	ticker := time.NewTicker(LogFlushInterval)
	defer ticker.Stop()

	batch := make([]string, 0, 50)

	for {
		select {
		case logLine := <-m.logChan:
			batch = append(batch, logLine)
			if len(batch) >= 20 {
				m.flushLogBatch(batch)
				batch = make([]string, 0, 50)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				m.flushLogBatch(batch)
				batch = make([]string, 0, 50)
			}

		case <-m.logDone:
			if len(batch) > 0 {
				m.flushLogBatch(batch)
			}
			return
		}
	}
}

// flushLogBatch сбрасывает батч логов в UI
func (m *Manager) flushLogBatch(batch []string) {
	m.statusMutex.Lock()
	m.logBuffer = append(m.logBuffer, batch...)
	if len(m.logBuffer) > MaxLogBufferSize {
		m.logBuffer = m.logBuffer[len(m.logBuffer)-MaxLogBufferSize:]
	}
	logText := strings.Join(m.logBuffer, "\n")
	m.statusMutex.Unlock()

	if m.logView != nil {
		m.app.QueueUpdateDraw(func() {
			m.logView.SetText(logText)
			m.logView.ScrollToEnd()
		})
	}
}

// Cleanup отключает компоненты и освобождает ресурсы менеджера (идемпотентный)
func (m *Manager) Cleanup() {
	m.logMutex.Lock()
	defer m.logMutex.Unlock()

	select {
	case <-m.logDone:
		return
	default:
		close(m.logDone)
	}
	m.unmountAll()
}
