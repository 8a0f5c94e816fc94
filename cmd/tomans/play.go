package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-tomans/internal/audiofx"
	"github.com/hazadus/go-tomans/internal/data"
	"github.com/hazadus/go-tomans/internal/player"
	"github.com/hazadus/go-tomans/internal/utils"
)

// playOptions параметры команды play
type playOptions struct {
	speed       float64
	repeat      bool
	autoAdvance bool
}

// createPlayCommand создает команду play с привязкой к экземпляру приложения
func (app *Application) createPlayCommand(ctx context.Context) *cobra.Command {
	var opts playOptions

	cmd := &cobra.Command{
		Use:   "play [trackid]",
		Short: "Play a track by its ID",
		Long:  `Play a local audio file by its track ID from the catalog.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			trackID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("неверный ID трека: %s", args[0])
			}
			return app.playByID(ctx, trackID, opts)
		},
	}

	cmd.Flags().Float64Var(&opts.speed, "speed", player.DefaultSpeed, "playback speed (0.5-2.0)")
	cmd.Flags().BoolVar(&opts.repeat, "repeat", false, "repeat the track")
	cmd.Flags().BoolVar(&opts.autoAdvance, "continue", false, "continue with the next track of the catalog")
	return cmd
}

// enableRawMode включает режим raw для терминала (без буферизации и echo)
func enableRawMode() {
	cmd := exec.Command("stty", "-echo", "-icanon")
	cmd.Stdin = os.Stdin
	_ = cmd.Run() // Игнорируем ошибку, так как это не критично для работы плеера
}

// disableRawMode восстанавливает нормальный режим терминала
func disableRawMode() {
	cmd := exec.Command("stty", "echo", "icanon")
	cmd.Stdin = os.Stdin
	_ = cmd.Run() // Игнорируем ошибку, так как это не критично для работы плеера
}

// readSingleChar читает одиночный символ без ожидания Enter
func readSingleChar() (byte, error) {
	buffer := make([]byte, 1)
	_, err := os.Stdin.Read(buffer)
	return buffer[0], err
}

func (app *Application) playByID(ctx context.Context, trackID int, opts playOptions) error {
	// Находим трек по ID
	track, err := app.Catalog.TrackByID(trackID)
	if err != nil {
		return fmt.Errorf("ошибка поиска трека: %w", err)
	}

	printNowPlaying(*track)

	controller := player.NewController(
		player.NewBeepEngineFactory(audiofx.NewRegistry(), app.Logger),
		player.NewSpeakerFocus(app.Logger),
		app.Config.PositionInterval,
		app.Logger,
	)
	defer controller.Close()

	controller.SetQueue(app.Catalog.Tracks)
	controller.SetRepeat(opts.repeat)
	controller.SetAutoAdvance(opts.autoAdvance)

	if err := controller.Select(*track); err != nil {
		return fmt.Errorf("ошибка запуска воспроизведения: %w", err)
	}
	controller.SetSpeed(opts.speed)

	fmt.Printf("🎮 Управление:\n")
	fmt.Printf("   [Пробел] - пауза/воспроизведение\n")
	fmt.Printf("   [Ctrl+C] - остановить и выйти\n")
	fmt.Println()

	// Включаем raw режим для чтения одиночных клавиш
	enableRawMode()
	defer disableRawMode()

	// Запускаем горутину для обработки клавиш
	go func() {
		for {
			char, err := readSingleChar()
			if err != nil {
				return
			}

			// Проверяем на пробел (ASCII 32) или Enter (ASCII 10/13)
			if char == 32 || char == 10 || char == 13 {
				if err := controller.Toggle(); err != nil {
					app.Logger.Debug().Err(err).Msg("переключение паузы")
				}
			}
		}
	}()

	// Главный цикл обработки событий
	current := track.ID
	started := false
	for {
		select {
		case status := <-controller.Progress():
			if status.Track != nil && status.Track.ID != current {
				current = status.Track.ID
				fmt.Println()
				printNowPlaying(*status.Track)
			}
			if status.IsPlaying() {
				started = true
			}
			// После окончания очереди контроллер возвращается в Idle
			if started && status.State == player.Idle {
				fmt.Println("\n✅ Воспроизведение завершено")
				return nil
			}
			displayProgress(status)
		case err := <-controller.Errors():
			fmt.Printf("\n⚠️  %v\n", err)
		case <-ctx.Done():
			fmt.Println("\n⏹️  Воспроизведение остановлено пользователем")
			return nil
		}
	}
}

func printNowPlaying(track data.Track) {
	fmt.Printf("🎵 Сейчас играет:\n")
	fmt.Printf("   ID: %d\n", track.ID)
	fmt.Printf("   Исполнитель: %s\n", track.Artist)
	fmt.Printf("   Название: %s\n", track.Title)
	fmt.Printf("   Альбом: %s\n", track.Album)
	if track.Duration > 0 {
		fmt.Printf("   Продолжительность: %s\n", utils.FormatDuration(track.Duration))
	}
	fmt.Println()
}

// displayProgress отображает прогресс воспроизведения
func displayProgress(status player.Status) {
	// Определяем процент завершения
	progress := "??%"
	if status.Total > 0 {
		percent := float64(status.Current) / float64(status.Total) * 100
		progress = fmt.Sprintf("%.1f%%", percent)
	}

	// Выбираем иконку статуса
	statusIcon := "▶️"
	switch status.State {
	case player.Paused:
		statusIcon = "⏸️"
	case player.Loading:
		statusIcon = "⏳"
	}

	fmt.Printf("\r\033[K%s  %s | %s / %s | Скорость: %.2fx",
		statusIcon,
		progress,
		utils.FormatClock(status.Current),
		utils.FormatClock(status.Total),
		status.Speed)
}
