package cells

// Reset-side primitive templates. All three keep the low-active internal
// convention of the generated controllers and carry a DFT bypass so scan
// can control the reset tree directly.
var resetCells = []Cell{
	{Name: "RST_ASYNC", Body: `// Async-assert, sync-release reset synchronizer.
module RST_ASYNC #(
    parameter STAGE = 3
) (
    input  wire clk,
    input  wire rst_n_in,
    input  wire test_en,
    output wire rst_n_out
);
    reg [STAGE-1:0] sync;
    always @(posedge clk or negedge rst_n_in) begin
        if (!rst_n_in)
            sync <= {STAGE{1'b0}};
        else
            sync <= {sync[STAGE-2:0], 1'b1};
    end
    assign rst_n_out = test_en ? rst_n_in : sync[STAGE-1];
endmodule
`},
	{Name: "RST_SYNC", Body: `// Fully synchronous reset pipeline.
module RST_SYNC #(
    parameter STAGE = 4
) (
    input  wire clk,
    input  wire rst_n_in,
    input  wire test_en,
    output wire rst_n_out
);
    reg [STAGE-1:0] pipe;
    always @(posedge clk) begin
        pipe <= {pipe[STAGE-2:0], rst_n_in};
    end
    assign rst_n_out = test_en ? rst_n_in : pipe[STAGE-1];
endmodule
`},
	{Name: "RST_CNT", Body: `// Counter-based reset release: holds reset for CYCLE clocks after the
// upstream reset deasserts.
module RST_CNT #(
    parameter CYCLE = 16,
    parameter WIDTH = $clog2(CYCLE + 1)
) (
    input  wire clk,
    input  wire rst_n_in,
    input  wire test_en,
    output wire rst_n_out
);
    reg [WIDTH-1:0] cnt;
    reg             done;
    always @(posedge clk or negedge rst_n_in) begin
        if (!rst_n_in) begin
            cnt  <= {WIDTH{1'b0}};
            done <= 1'b0;
        end else if (cnt == CYCLE[WIDTH-1:0]) begin
            done <= 1'b1;
        end else begin
            cnt <= cnt + 1'b1;
        end
    end
    assign rst_n_out = test_en ? rst_n_in : done;
endmodule
`},
}
