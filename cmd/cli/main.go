package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/binarydooms-ai/youtube-downloader-api/internal/app"
	"github.com/binarydooms-ai/youtube-downloader-api/internal/domain"
)

var (
	serverURL string
	rootCmd   = &cobra.Command{
		Use:   "ytdl",
		Short: "YouTube downloader CLI",
		Long:  `A command-line interface for resolving formats and managing download jobs.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")

	rootCmd.AddCommand(formatsCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
}

var formatsCmd = &cobra.Command{
	Use:   "formats [url]",
	Short: "List available formats for a video",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		body := postJSON("/api/v1/formats", map[string]string{"url": args[0]}, http.StatusOK)

		var menu struct {
			VideoID  string `json:"video_id"`
			Title    string `json:"title"`
			Duration string `json:"duration"`
			Views    string `json:"views"`
			Options  []struct {
				Method        string `json:"download_method"`
				StreamID      string `json:"stream_id"`
				VideoStreamID string `json:"video_stream_id"`
				AudioStreamID string `json:"audio_stream_id"`
				Quality       string `json:"quality"`
				Container     string `json:"container"`
				FileSizeLabel string `json:"file_size_label"`
			} `json:"options"`
		}
		mustUnmarshal(body, &menu)

		fmt.Printf("%s (%s, %s)\n\n", menu.Title, menu.Duration, menu.Views)
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "QUALITY\tCONTAINER\tMETHOD\tSIZE\tSTREAMS")
		for _, o := range menu.Options {
			streams := o.StreamID
			if o.Method == "mux" {
				streams = o.VideoStreamID + "+" + o.AudioStreamID
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				o.Quality, o.Container, o.Method, o.FileSizeLabel, streams)
		}
		w.Flush()
	},
}

var addCmd = &cobra.Command{
	Use:   "add [video-id]",
	Short: "Start a download job",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		payload := map[string]string{"video_id": args[0]}
		for flagName, key := range map[string]string{
			"title":   "title",
			"quality": "quality",
			"format":  "format",
			"stream":  "stream_id",
			"video":   "video_stream_id",
			"audio":   "audio_stream_id",
		} {
			if v, _ := cmd.Flags().GetString(flagName); v != "" {
				payload[key] = v
			}
		}

		body := postJSON("/api/v1/jobs", payload, http.StatusCreated)
		var job map[string]interface{}
		mustUnmarshal(body, &job)
		fmt.Printf("Job created!\n")
		fmt.Printf("ID: %s\n", job["id"])
		fmt.Printf("Status: %s\n", job["status"])
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all download jobs",
	Run: func(cmd *cobra.Command, args []string) {
		body := getBody("/api/v1/jobs")

		var result struct {
			Jobs []map[string]interface{} `json:"jobs"`
		}
		mustUnmarshal(body, &result)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tQUALITY\tSTATUS\tPROGRESS")
		for _, j := range result.Jobs {
			fmt.Fprintf(w, "%s\t%s\t%v\t%v\t%v%%\n",
				truncate(str(j["id"]), 8),
				truncate(str(j["title"]), 40),
				j["quality"],
				j["status"],
				j["progress"])
		}
		w.Flush()
	},
}

var getCmd = &cobra.Command{
	Use:   "get [job-id]",
	Short: "Show one download job",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		body := getBody("/api/v1/jobs/" + args[0])
		var job map[string]interface{}
		mustUnmarshal(body, &job)

		fmt.Printf("ID:       %s\n", job["id"])
		fmt.Printf("Video:    %s\n", job["video_id"])
		fmt.Printf("Title:    %s\n", job["title"])
		fmt.Printf("Status:   %s\n", job["status"])
		fmt.Printf("Progress: %v%%\n", job["progress"])
		if v := str(job["file_path"]); v != "" {
			fmt.Printf("File:     %s (%s)\n", v, str(job["file_size"]))
		}
		if v := str(job["error_message"]); v != "" {
			fmt.Printf("Error:    %s\n", v)
		}
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream live job progress events",
	Run: func(cmd *cobra.Command, args []string) {
		wsURL, err := url.Parse(serverURL)
		if err != nil {
			fatalf("Invalid server URL: %v", err)
		}
		wsURL.Scheme = strings.Replace(wsURL.Scheme, "http", "ws", 1)
		wsURL.Path = "/api/v1/jobs/ws"

		conn, _, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
		if err != nil {
			fatalf("Error: %v", err)
		}
		defer conn.Close()

		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt)
		go func() {
			<-interrupt
			conn.Close()
			os.Exit(0)
		}()

		fmt.Println("Watching job progress (Ctrl-C to stop)...")
		for {
			var event struct {
				JobID        string `json:"job_id"`
				Title        string `json:"title"`
				Status       string `json:"status"`
				Progress     int    `json:"progress"`
				ErrorMessage string `json:"error_message"`
			}
			if err := conn.ReadJSON(&event); err != nil {
				return
			}
			line := fmt.Sprintf("[%s] %s %s %d%%",
				truncate(event.JobID, 8), truncate(event.Title, 40), event.Status, event.Progress)
			if event.ErrorMessage != "" {
				line += " (" + event.ErrorMessage + ")"
			}
			fmt.Println(line)
		}
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete [job-id]",
	Short: "Delete a download job and its file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		body := doDelete("/api/v1/jobs/" + args[0])
		var result struct {
			Deleted bool `json:"deleted"`
		}
		mustUnmarshal(body, &result)
		if result.Deleted {
			fmt.Println("Job deleted")
		} else {
			fmt.Println("No such job")
		}
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all download jobs and their files",
	Run: func(cmd *cobra.Command, args []string) {
		doDelete("/api/v1/jobs")
		fmt.Println("All jobs cleared")
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show job statistics",
	Run: func(cmd *cobra.Command, args []string) {
		body := getBody("/api/v1/jobs/stats")
		var stats map[string]interface{}
		mustUnmarshal(body, &stats)

		fmt.Println("Job Statistics:")
		fmt.Printf("  Total:       %v\n", stats["total"])
		fmt.Printf("  Pending:     %v\n", stats["pending"])
		fmt.Printf("  Downloading: %v\n", stats["downloading"])
		fmt.Printf("  Completed:   %v\n", stats["completed"])
		fmt.Printf("  Failed:      %v\n", stats["failed"])
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the server configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default configuration file",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var path string
		if len(args) > 0 {
			path = args[0]
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				fatalf("Error: %v", err)
			}
			path = filepath.Join(home, ".yt-downloader", "config.yaml")
		}

		if _, err := os.Stat(path); err == nil {
			fatalf("Error: %s already exists", path)
		}
		if err := app.SaveConfig(domain.DefaultConfig(), path); err != nil {
			fatalf("Error: %v", err)
		}
		fmt.Printf("Config written to %s\n", path)
	},
}

func init() {
	addCmd.Flags().String("title", "", "Video title (stored on the job)")
	addCmd.Flags().String("quality", "", "Requested quality label")
	addCmd.Flags().String("format", "", "Requested container format")
	addCmd.Flags().String("stream", "", "Stream ID for a progressive download")
	addCmd.Flags().String("video", "", "Video stream ID for a mux download")
	addCmd.Flags().String("audio", "", "Audio stream ID for a mux download")
}

func postJSON(path string, payload interface{}, wantStatus int) []byte {
	data, _ := json.Marshal(payload)
	resp, err := http.Post(serverURL+path, "application/json", bytes.NewBuffer(data))
	if err != nil {
		fatalf("Error: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != wantStatus {
		fatalf("Error: %s", string(body))
	}
	return body
}

func getBody(path string) []byte {
	resp, err := http.Get(serverURL + path)
	if err != nil {
		fatalf("Error: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fatalf("Error: %s", string(body))
	}
	return body
}

func doDelete(path string) []byte {
	req, _ := http.NewRequest(http.MethodDelete, serverURL+path, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fatalf("Error: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fatalf("Error: %s", string(body))
	}
	return body
}

func mustUnmarshal(data []byte, v interface{}) {
	if err := json.Unmarshal(data, v); err != nil {
		fatalf("Error parsing response: %v", err)
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
